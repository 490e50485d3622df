package domain

// SubmittedTogether - изменения, которые будут засабмичены вместе с выбранным
type SubmittedTogether struct {
	Changes           []*Change
	NonVisibleChanges int
}

// SubmitAction описывает кнопку submit для изменения
type SubmitAction struct {
	Label   string
	Title   string
	Enabled bool
}

type SubmittedTogetherOption string

const (
	OptionTopicClosure      SubmittedTogetherOption = "TOPIC_CLOSURE"
	OptionNonVisibleChanges SubmittedTogetherOption = "NON_VISIBLE_CHANGES"
)
