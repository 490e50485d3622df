package domain

import (
	"strings"
	"time"
)

// ChangeID - числовой идентификатор изменения, выдается при создании и не меняется
type ChangeID int64

type Change struct {
	ID              ChangeID
	Project         string
	Branch          string
	OwnerID         string
	Status          Status
	Topic           string
	IsPrivate       bool
	CurrentPatchSet PatchSet
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

// PatchSet - неизменяемая ревизия коммита изменения
type PatchSet struct {
	Number    int
	CommitID  string
	ParentIDs []string
}

type Status string

const (
	StatusNew       Status = "NEW"
	StatusMerged    Status = "MERGED"
	StatusAbandoned Status = "ABANDONED"
)

func (s Status) IsClosed() bool {
	return s == StatusMerged || s == StatusAbandoned
}

func (c *Change) IsNew() bool {
	return c.Status == StatusNew
}

// NormalizeTopic приводит топик к каноничному виду: пустая строка означает отсутствие топика
func NormalizeTopic(topic string) string {
	return strings.TrimSpace(topic)
}

// HasTopic сообщает, связан ли change с другими изменениями через топик
func (c *Change) HasTopic() bool {
	return NormalizeTopic(c.Topic) != ""
}
