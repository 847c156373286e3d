package notes

import (
	"strings"

	"github.com/starford/corner/internal/models"
)

// Placeholder is shown in a panel without text.
const Placeholder = "—"

const timeLayout = "02 Jan 2006, 03:04 PM"

// Labels are the display titles of the two parties.
type Labels struct {
	Partner string `json:"partner"`
	Self    string `json:"self"`
}

func (l Labels) withDefaults() Labels {
	if l.Partner == "" {
		l.Partner = "Kunjus"
	}
	if l.Self == "" {
		l.Self = "Me"
	}
	return l
}

// For returns the title of author. Any author other than the partner is
// titled as self, matching Author.Counterpart.
func (l Labels) For(author models.Author) string {
	if author == models.AuthorPartner {
		return l.Partner
	}
	return l.Self
}

// Panel is one side of a rendered note.
type Panel struct {
	Author models.Author `json:"author"`
	Title  string        `json:"title"`
	Text   string        `json:"text"`
	Empty  bool          `json:"empty"`
}

// Entry is a rendered note: the author's panel first, the counterpart's
// panel (holding the reply) second.
type Entry struct {
	ID     string        `json:"id"`
	Author models.Author `json:"author"`
	Time   string        `json:"time"`
	Panels [2]Panel      `json:"panels"`
}

// View renders n with its time in the civil zone.
func (l *Log) View(n models.Note) Entry {
	t := l.src.In(n.Created())
	abbr, _ := t.Zone()
	return Entry{
		ID:     n.ID,
		Author: n.Author,
		Time:   t.Format(timeLayout) + " • " + abbr,
		Panels: [2]Panel{
			panel(n.Author, l.labels.For(n.Author), n.Text),
			panel(n.Author.Counterpart(), l.labels.For(n.Author.Counterpart()), n.Reply),
		},
	}
}

func panel(author models.Author, title, text string) Panel {
	if text == "" {
		return Panel{Author: author, Title: title, Text: Placeholder, Empty: true}
	}
	return Panel{Author: author, Title: title, Text: text}
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five structural HTML characters.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}
