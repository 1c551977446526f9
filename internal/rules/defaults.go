package rules

const menuResponse = "Menú principal (escribí una frase o palabra clave):\n" +
	"1) Bienestar y Salud → amsa, cic, consumos, punto violeta, discapacidad, dengue\n" +
	"2) Educación y Juventud → juventud, deporte, congreso cer, economía social\n" +
	"3) Trámites y Gestiones → trámite online, turno licencia, proveedores\n" +
	"4) Cultura, Turismo y Ambiente → agenda cultural, turismo, villa más limpia\n" +
	"5) Desarrollo Urbano y Comercio → obras privadas, planificación, comercio\n" +
	"6) Información y Contacto → contacto, emergencias, horarios\n" +
	"Sugerencia: por ejemplo, escribí ‘turno licencia’ o ‘punto violeta’."

const paymentsResponse = "Podés pagar tus impuestos municipales desde la web oficial en Trámites > Pagos. " +
	"Aceptamos tarjetas, débito automático y pagos en entidades adheridas."

const whoWeAreResponse = "Somos el equipo de Atención Digital del municipio, con especialistas en gestión de trámites, " +
	"participación ciudadana y tecnología cívica. Trabajamos junto a las áreas de Atención Vecinal " +
	"para darte respuestas claras y actualizadas."

const aboutBotResponse = "Este chatbot combina respuestas oficiales, búsquedas en la base de conocimiento municipal y un modelo LLM " +
	"moderado. Puede orientarte con horarios, trámites frecuentes, normativa vigente y derivarte a una persona si es necesario."

const contactResponse = "Podés comunicarte al 0800-123-4567 de 8 a 20 hs o escribir a atencion@municipio.gob. " +
	"También atendemos por WhatsApp al +54 9 11 5555-0000."

const digitalServicesResponse = "Disponés de turnos online, pagos de tasas, reclamos, consulta de ordenanzas y seguimiento de expedientes " +
	"desde tramites.municipio.gob. También podés descargar comprobantes y pedir certificados digitales."

// DefaultRules returns the built-in rule set for the municipal bot.
// Logical OR between triggers ("ayuda" vs "menu") is expressed by duplicating
// the rule; the engine itself only does AND / k-of-n matching.
func DefaultRules() []Rule {
	return []Rule{
		{
			Keywords: []string{"horario", "atencion"},
			Response: "Nuestros horarios de atención al público son de lunes a viernes de 9 a 17 hs. " +
				"Los sábados abrimos de 9 a 13 hs para trámites rápidos.",
			Source: SourceFAQ,
		},
		{Keywords: []string{"pag", "impuest"}, Response: paymentsResponse, Source: SourceFAQ},
		{Keywords: []string{"como", "pag"}, Response: paymentsResponse, Source: SourceFAQ},
		{
			Keywords: []string{"turno"},
			Response: "Ingresá en turnos.municipio.gob para solicitar o reprogramar tu turno municipal.",
			Source:   SourceFAQ,
		},
		{
			Keywords: []string{"contacto"},
			Response: "Podés llamar al 0800-123-4567 o escribir a atencion@municipio.gob de 8 a 20 hs.",
			Source:   SourceFAQ,
		},
		{
			Keywords: []string{"reclamo"},
			Response: "Usá la app Municipalidad Cerca o acercate a Atención Vecinal para cargar tu reclamo.",
			Source:   SourceFAQ,
		},
		{Keywords: []string{"hola"}, Response: "¡Hola! ¿En qué puedo ayudarte hoy?", Source: SourceFallback},
		{Keywords: []string{"ayuda"}, Response: menuResponse, Source: SourceFallback},
		{Keywords: []string{"menu"}, Response: menuResponse, Source: SourceFallback},
		// Soft rule for digital services: stems plus 2-of-3 matching keeps
		// recall up without capturing unrelated messages.
		{
			Keywords:   []string{"tramit", "servici", "digital"},
			Response:   digitalServicesResponse,
			Source:     SourceFAQ,
			MinMatches: 2,
		},
		{Keywords: []string{"quien", "somos"}, Response: whoWeAreResponse, Source: SourceFAQ},
		{Keywords: []string{"quien", "son"}, Response: whoWeAreResponse, Source: SourceFAQ},
		{Keywords: []string{"opcion", "1"}, Response: whoWeAreResponse, Source: SourceFAQ},
		{Keywords: []string{"1"}, Response: whoWeAreResponse, Source: SourceFAQ},
		{Keywords: []string{"opcion", "2"}, Response: aboutBotResponse, Source: SourceFAQ},
		{Keywords: []string{"2"}, Response: aboutBotResponse, Source: SourceFAQ},
		{Keywords: []string{"opcion", "3"}, Response: contactResponse, Source: SourceFAQ},
		{Keywords: []string{"3"}, Response: contactResponse, Source: SourceFAQ},
		{Keywords: []string{"opcion", "4"}, Response: digitalServicesResponse, Source: SourceFAQ},
		{Keywords: []string{"4"}, Response: digitalServicesResponse, Source: SourceFAQ},
		{Keywords: []string{"gracia"}, Response: "¡Gracias a vos! ¿Te ayudo con algo más?", Source: SourceFallback},
	}
}
