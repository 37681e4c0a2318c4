package notify

import (
	"fmt"
	"time"

	"taskboard-notifier/internal/models"
	"taskboard-notifier/internal/utils"
)

// Reason identifies why a notification is being sent
type Reason string

const (
	ReasonStatusChange     Reason = "status-change"
	ReasonDeadlineOverdue  Reason = "deadline-overdue"
	ReasonDeadlineToday    Reason = "deadline-today"
	ReasonDeadlineTomorrow Reason = "deadline-tomorrow"
)

// ChatMessage is the webhook wire format:
// {"cardsV2":[{"cardId":...,"card":{"header":...,"sections":[...]}}]}
type ChatMessage struct {
	CardsV2 []CardV2 `json:"cardsV2"`
}

// CardV2 wraps one card with its ID
type CardV2 struct {
	CardID string `json:"cardId"`
	Card   Card   `json:"card"`
}

// Card is one structured notification payload
type Card struct {
	Header   CardHeader `json:"header"`
	Sections []Section  `json:"sections"`
}

// CardHeader is the card title line
type CardHeader struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// Section groups widgets within a card
type Section struct {
	Widgets []Widget `json:"widgets"`
}

// Widget is one card body element
type Widget struct {
	DecoratedText *DecoratedText `json:"decoratedText,omitempty"`
	ButtonList    *ButtonList    `json:"buttonList,omitempty"`
}

// DecoratedText is a labeled text line
type DecoratedText struct {
	TopLabel string `json:"topLabel,omitempty"`
	Text     string `json:"text"`
}

// ButtonList holds the card's action controls
type ButtonList struct {
	Buttons []Button `json:"buttons"`
}

// Button is a clickable action control
type Button struct {
	Text    string  `json:"text"`
	OnClick OnClick `json:"onClick"`
}

// OnClick opens a link when the button is pressed
type OnClick struct {
	OpenLink OpenLink `json:"openLink"`
}

// OpenLink carries the target URL
type OpenLink struct {
	URL string `json:"url"`
}

// RenderOptions carries the per-operation context a card needs: the assignee
// directory (loaded once per operation), the link back to the live table, and
// the table's time zone.
type RenderOptions struct {
	Directory map[string]string
	TableURL  string
	Location  *time.Location
}

// noDueDate is rendered when a task has no due date set
const noDueDate = "(no due date)"

// Render builds the notification card for a task snapshot. Pure: no I/O, no
// clock reads, and a deterministic card ID of {taskID}-{reason}.
func Render(task models.Task, reason Reason, opts RenderOptions) ChatMessage {
	icon, title := headerFor(reason, task.Status)

	assignee := task.Assignee
	if addr, ok := opts.Directory[task.Assignee]; ok && addr != "" {
		assignee = fmt.Sprintf("<users/%s>", addr)
	}

	due := noDueDate
	if task.DueDate != nil {
		loc := opts.Location
		if loc == nil {
			// Same fallback zone as config.Location
			loc = time.FixedZone("JST", 9*60*60)
		}
		due = utils.FormatDate(task.DueDate.In(loc))
	}

	widgets := []Widget{
		{DecoratedText: &DecoratedText{TopLabel: "Task", Text: task.Name}},
		{DecoratedText: &DecoratedText{TopLabel: "Assignee", Text: assignee}},
		{DecoratedText: &DecoratedText{TopLabel: "Status", Text: string(task.Status)}},
		{DecoratedText: &DecoratedText{TopLabel: "Due", Text: due}},
	}

	sections := []Section{{Widgets: widgets}}
	if opts.TableURL != "" {
		sections = append(sections, Section{Widgets: []Widget{
			{ButtonList: &ButtonList{Buttons: []Button{{
				Text:    "Open task table",
				OnClick: OnClick{OpenLink: OpenLink{URL: opts.TableURL}},
			}}}},
		}})
	}

	return ChatMessage{CardsV2: []CardV2{{
		CardID: fmt.Sprintf("%s-%s", task.ID, reason),
		Card: Card{
			Header:   CardHeader{Title: fmt.Sprintf("%s %s", icon, title)},
			Sections: sections,
		},
	}}}
}

// headerFor selects the icon and title. The mapping is fixed:
// awaiting-confirmation -> person, done -> check, overdue -> warning,
// today -> alarm, tomorrow -> calendar, anything else -> bell.
func headerFor(reason Reason, status models.TaskStatus) (icon, title string) {
	switch reason {
	case ReasonDeadlineOverdue:
		return "⚠️", "Task overdue"
	case ReasonDeadlineToday:
		return "⏰", "Task due today"
	case ReasonDeadlineTomorrow:
		return "📅", "Task due tomorrow"
	}

	switch status {
	case models.TaskStatusAwaitingConf:
		return "🙋", "Task awaiting confirmation"
	case models.TaskStatusDone:
		return "✅", "Task completed"
	default:
		return "🔔", "Task status updated"
	}
}
