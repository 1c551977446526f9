package intent

// DefaultPatterns returns the built-in pattern set for the municipal bot.
// Keywords are stems ("pag", "impuest") so inflected forms still match the
// substring check. Order is the only precedence mechanism: the two-keyword
// "opcion N" patterns sit above the bare digit ones on purpose.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Intent: FAQ, Keywords: []string{"horario", "atencion"}, Confidence: 0.9},
		{Intent: FAQ, Keywords: []string{"pag", "impuest"}, Confidence: 0.8},
		{Intent: FAQ, Keywords: []string{"como", "pag"}, Confidence: 0.7},
		{Intent: FAQ, Keywords: []string{"quien", "somos"}, Confidence: 0.7},
		{Intent: FAQ, Keywords: []string{"quien", "son"}, Confidence: 0.7},
		{Intent: FAQ, Keywords: []string{"turno"}, Confidence: 0.75},
		{Intent: FAQ, Keywords: []string{"contacto"}, Confidence: 0.75},
		{Intent: FAQ, Keywords: []string{"reclamo"}, Confidence: 0.7},
		{Intent: Smalltalk, Keywords: []string{"hola"}, Confidence: 0.5},
		{Intent: Smalltalk, Keywords: []string{"ayuda"}, Confidence: 0.5},
		{Intent: Smalltalk, Keywords: []string{"menu"}, Confidence: 0.5},
		{Intent: Smalltalk, Keywords: []string{"gracia"}, Confidence: 0.4},
		{Intent: Smalltalk, Keywords: []string{"opcion"}, Confidence: 0.4},
		{Intent: Smalltalk, Keywords: []string{"1"}, Confidence: 0.3},
		{Intent: Smalltalk, Keywords: []string{"2"}, Confidence: 0.3},
		{Intent: Smalltalk, Keywords: []string{"3"}, Confidence: 0.3},
		{Intent: Smalltalk, Keywords: []string{"4"}, Confidence: 0.3},
		{Intent: Handoff, Keywords: []string{"hablar", "agente"}, Confidence: 0.8},
		{Intent: RAG, Keywords: []string{"ordenanza"}, Confidence: 0.6},
		{Intent: RAG, Keywords: []string{"normativa"}, Confidence: 0.6},
		{Intent: RAG, Keywords: []string{"ambiente", "permis"}, Confidence: 0.65},
		{Intent: RAG, Keywords: []string{"poda"}, Confidence: 0.65},
		{Intent: RAG, Keywords: []string{"licenc", "conduc"}, Confidence: 0.65},
		{Intent: RAG, Keywords: []string{"proveedor", "inscrip"}, Confidence: 0.65},
		{Intent: RAG, Keywords: []string{"discap", "certific"}, Confidence: 0.65},
		{Intent: RAG, Keywords: []string{"genero", "violeta"}, Confidence: 0.65},
		{Intent: RAG, Keywords: []string{"dengue"}, Confidence: 0.65},
	}
}
