package catalog

import (
	"sort"

	"recruitops/internal/model"
)

// Template is one milestone definition inside a service type's plan.
// Anchor is the event that starts its clock; Completion is the event that
// marks it done. DurationDays and WarningDays are working days.
type Template struct {
	Position     int
	Name         string
	Description  string
	Anchor       model.AnchorEvent
	Completion   model.AnchorEvent
	DurationDays int
	WarningDays  int
}

// The catalog is static configuration compiled into the binary. Changing a
// plan is a deployment, which keeps in-flight processes on the plan they
// were created with (plan rows copy these values at build time).
var templates = map[model.ServiceType][]Template{
	model.ServiceFullCycle: {
		{
			Position:     1,
			Name:         "Publicar aviso",
			Description:  "Publicar el aviso del cargo en los portales",
			Anchor:       model.AnchorProcessStart,
			Completion:   model.AnchorPublicationDone,
			DurationDays: 2,
			WarningDays:  1,
		},
		{
			Position:     2,
			Name:         "Presentación de candidatos",
			Description:  "Primera presentación de candidatos al cliente",
			Anchor:       model.AnchorPublicationDone,
			Completion:   model.AnchorFirstPresentation,
			DurationDays: 10,
			WarningDays:  5,
		},
		{
			Position:     3,
			Name:         "Aprobación de terna",
			Description:  "Cliente aprueba la terna presentada",
			Anchor:       model.AnchorFirstPresentation,
			Completion:   model.AnchorApprovalDone,
			DurationDays: 5,
			WarningDays:  2,
		},
		{
			Position:     4,
			Name:         "Agendar entrevistas",
			Description:  "Agendar entrevistas con los candidatos aprobados",
			Anchor:       model.AnchorApprovalDone,
			Completion:   model.AnchorInterviewDone,
			DurationDays: 0,
			WarningDays:  0,
		},
		{
			Position:     5,
			Name:         "Informe de cierre",
			Description:  "Entregar informe final y cerrar el proceso",
			Anchor:       model.AnchorInterviewDone,
			Completion:   model.AnchorClosureDone,
			DurationDays: 5,
			WarningDays:  2,
		},
	},
	model.ServiceLongList: {
		{
			Position:     1,
			Name:         "Publicar aviso",
			Description:  "Publicar el aviso del cargo",
			Anchor:       model.AnchorProcessStart,
			Completion:   model.AnchorPublicationDone,
			DurationDays: 0,
			WarningDays:  0,
		},
		{
			Position:     2,
			Name:         "Presentación de long list",
			Description:  "Entregar la long list de candidatos",
			Anchor:       model.AnchorPublicationDone,
			Completion:   model.AnchorFirstPresentation,
			DurationDays: 10,
			WarningDays:  5,
		},
	},
	model.ServiceTargeted: {
		{
			Position:     1,
			Name:         "Presentación de candidatos",
			Description:  "Presentación de candidatos por búsqueda dirigida",
			Anchor:       model.AnchorProcessStart,
			Completion:   model.AnchorFirstPresentation,
			DurationDays: 10,
			WarningDays:  5,
		},
		{
			Position:     2,
			Name:         "Agendar entrevistas",
			Description:  "Agendar entrevistas con el cliente",
			Anchor:       model.AnchorFirstPresentation,
			Completion:   model.AnchorInterviewDone,
			DurationDays: 0,
			WarningDays:  0,
		},
		{
			Position:     3,
			Name:         "Informe de cierre",
			Description:  "Entregar informe final y cerrar el proceso",
			Anchor:       model.AnchorInterviewDone,
			Completion:   model.AnchorClosureDone,
			DurationDays: 5,
			WarningDays:  2,
		},
	},
	model.ServiceEvaluation: {
		{
			Position:     1,
			Name:         "Agendar entrevista",
			Description:  "Agendar la entrevista de evaluación",
			Anchor:       model.AnchorProcessStart,
			Completion:   model.AnchorInterviewDone,
			DurationDays: 0,
			WarningDays:  0,
		},
		{
			Position:     2,
			Name:         "Entrega de informe",
			Description:  "Entregar el informe de evaluación",
			Anchor:       model.AnchorInterviewDone,
			Completion:   model.AnchorClosureDone,
			DurationDays: 5,
			WarningDays:  2,
		},
	},
	model.ServiceTest: {
		{
			Position:     1,
			Name:         "Agendar prueba",
			Description:  "Agendar la aplicación de la prueba",
			Anchor:       model.AnchorProcessStart,
			Completion:   model.AnchorTestDone,
			DurationDays: 0,
			WarningDays:  0,
		},
		{
			Position:     2,
			Name:         "Entrega de resultados",
			Description:  "Entregar los resultados de la prueba",
			Anchor:       model.AnchorTestDone,
			Completion:   model.AnchorClosureDone,
			DurationDays: 3,
			WarningDays:  1,
		},
	},
}

// TemplatesFor returns the ordered plan for a service type. Unknown codes
// yield an empty list, never an error, so callers detect "no plan
// applicable" without a special case. The returned slice is a copy.
func TemplatesFor(code model.ServiceType) []Template {
	src, ok := templates[code]
	if !ok {
		return nil
	}
	out := make([]Template, len(src))
	copy(out, src)
	return out
}

// KnownServiceTypes lists every service type the catalog has a plan for,
// in stable order.
func KnownServiceTypes() []model.ServiceType {
	codes := make([]model.ServiceType, 0, len(templates))
	for code := range templates {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
