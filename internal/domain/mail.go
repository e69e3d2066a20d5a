package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type RosterMailSlot struct {
	SessionName string `json:"sessionName"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Room        string `json:"room"`
}

// RosterMailData is the payload of the per-supervisor roster email sent
// when a solution is published.
type RosterMailData struct {
	FullName   string           `json:"fullName"`
	PeriodName string           `json:"periodName"`
	Slots      []RosterMailSlot `json:"slots"`
}
