package club

// Style classes understood by the web client.
const (
	styleRed    = "text-red-500 bg-red-100"
	styleBlue   = "text-blue-500 bg-blue-100"
	styleGreen  = "text-green-500 bg-green-100"
	styleYellow = "text-yellow-500 bg-yellow-100"
	styleGray   = "text-gray-500 bg-gray-100"
)

const UnknownLabel = "Неизвестно"

var roleStyles = map[Role]string{
	RoleMafia:    styleRed,
	RoleSheriff:  styleBlue,
	RoleDoctor:   styleGreen,
	RoleCivilian: styleGray,
}

var outcomeStyles = map[Outcome]string{
	OutcomeMafia:     styleRed,
	OutcomeCivilians: styleBlue,
	OutcomeNeutral:   styleYellow,
}

var outcomeLabels = map[Outcome]string{
	OutcomeMafia:     "Мафия",
	OutcomeCivilians: "Мирные",
	OutcomeNeutral:   "Ничья",
}

// RoleStyle maps a role name to its badge style. Unknown roles are gray.
func RoleStyle(role string) string {
	if style, ok := roleStyles[Role(role)]; ok {
		return style
	}
	return styleGray
}

func OutcomeStyle(outcome Outcome) string {
	if style, ok := outcomeStyles[outcome]; ok {
		return style
	}
	return styleGray
}

// OutcomeLabel returns the localized name of an outcome.
func OutcomeLabel(outcome Outcome) string {
	if label, ok := outcomeLabels[outcome]; ok {
		return label
	}
	return UnknownLabel
}
