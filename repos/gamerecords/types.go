package gamerecords

// OutcomeRequest carries the finalized draft record the verification service
// matches game records against.
type OutcomeRequest struct {
	DraftID         string   `json:"draftId"`
	BattleCodes     []string `json:"battleCodes"`
	SideASelections []string `json:"sideASelections"`
	SideBSelections []string `json:"sideBSelections"`
	SideALeader     string   `json:"sideALeader"`
	SideBLeader     string   `json:"sideBLeader"`
}

// SubMatchOutcome is the verified result of one battle code.
type SubMatchOutcome struct {
	BattleCode string `json:"battleCode"`
	Winner     string `json:"winner"`
	Verified   bool   `json:"verified"`
}

// OutcomeResponse is the verification service's answer for a whole draft.
type OutcomeResponse struct {
	DraftID  string            `json:"draftId"`
	Outcomes []SubMatchOutcome `json:"outcomes"`
}
