package services

// Well-known contact type codes the rule engine keys behaviour on. These are
// reference data in the legacy schema; the codes themselves are fixed.
const (
	ContactTypeBreachStart             = "AIBR" // initiate breach proceedings
	ContactTypeBreachEnd               = "AIBE" // breach concluded
	ContactTypePrisonRecall            = "AIPR" // recall to prison, also concludes a breach
	ContactTypeStartOfPostSentenceWork = "APSS" // start of post-sentence supervision
	ContactTypeReviewEnforcementStatus = "ARWS" // system review raised when the FTC limit is hit
	ContactTypeReleaseFromCustody      = "EREL"
)

// BreachStartTypeCodes are the contact types that open breach proceedings.
var BreachStartTypeCodes = []string{ContactTypeBreachStart}

// BreachEndTypeCodes are the contact types that conclude breach proceedings.
// Prison recall and start of post-sentence supervision end a breach as a side
// effect, so they are ignored when recorded on the same day the breach opened.
var BreachEndTypeCodes = []string{
	ContactTypeBreachEnd,
	ContactTypePrisonRecall,
	ContactTypeStartOfPostSentenceWork,
}

// BreachTypeCodes is every contact type that moves an event's breach state.
var BreachTypeCodes = append(append([]string{}, BreachStartTypeCodes...), BreachEndTypeCodes...)

// IsBreachType reports whether the given contact type code moves breach state.
func IsBreachType(code string) bool {
	for _, c := range BreachTypeCodes {
		if c == code {
			return true
		}
	}
	return false
}

// isBreachStartType reports whether the code opens breach proceedings.
func isBreachStartType(code string) bool {
	for _, c := range BreachStartTypeCodes {
		if c == code {
			return true
		}
	}
	return false
}

// isBreachEndSideEffect reports whether the code ends a breach only as a side
// effect of another process.
func isBreachEndSideEffect(code string) bool {
	return code == ContactTypePrisonRecall || code == ContactTypeStartOfPostSentenceWork
}

// Audited interaction names, one per use case.
const (
	InteractionAddContact            = "ADD_CONTACT"
	InteractionUpdateContact         = "UPDATE_CONTACT"
	InteractionDeleteContact         = "DELETE_CONTACT"
	InteractionDeletePreviousContact = "DELETE_PREVIOUS_CONTACT"
	InteractionReplaceContact        = "REPLACE_CONTACT"
	InteractionAddNsi                = "ADD_NSI"
)
