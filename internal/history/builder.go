package history

import (
	"fmt"
	"strings"

	"ArticleHistoryBot/internal/document"
)

// CanonicalTemplateName is what the aggregate block is renamed to on output.
const CanonicalTemplateName = "Article history"

// LineBreak is the marker appended to emitted values so re-rendered fields
// stay on separate lines once the host substitutes it. Appending it is the
// serializer's job alone; the decoder strips a trailing marker so a rendered
// aggregate decodes back to itself.
const LineBreak = "{{subst:User:ArticleHistoryBot/newline}}"

// StripLineBreak removes a trailing line-break marker from a raw value.
func StripLineBreak(value string) string {
	return strings.TrimSuffix(value, LineBreak)
}

// truthy is the token used for boolean flags; flags are omitted when false.
const truthy = "yes"

// builder accumulates an ordered parameter list.
type builder struct {
	params []document.Param
}

func (b *builder) add(key, value string) {
	b.params = append(b.params, document.Param{Key: key, Value: value})
}

func (b *builder) addOpt(key, value string) {
	if value != "" {
		b.add(key, value)
	}
}

// addBreak emits the value with its own line-break marker.
func (b *builder) addBreak(key, value string) {
	b.add(key, value+LineBreak)
}

func (b *builder) addOptBreak(key, value string) {
	if value != "" {
		b.addBreak(key, value)
	}
}

func (b *builder) flag(key string, set bool) {
	if set {
		b.add(key, truthy)
	}
}

func (b *builder) flagBreak(key string, set bool) {
	if set {
		b.addBreak(key, truthy)
	}
}

// endRecord terminates a multi-field record by marking its last value.
func (b *builder) endRecord() {
	if len(b.params) == 0 {
		return
	}
	b.params[len(b.params)-1].Value += LineBreak
}

// subIndex renders the positional suffix for families whose first entry is
// conventionally unsuffixed (dyk, ft).
func subIndex(n int) string {
	if n == 1 {
		return ""
	}
	return fmt.Sprintf("%d", n)
}

// Params re-serializes the aggregate into its ordered parameter list:
// actions, status, primary dates, ITN, DYK, OTD, the four flag, featured
// topics, topic, then the display flags. Optional fields are omitted rather
// than emitted empty.
func (ah *ArticleHistory) Params() []document.Param {
	b := &builder{}

	for i, a := range ah.Actions {
		n := i + 1
		b.addBreak(fmt.Sprintf("action%d", n), string(a.Kind))
		b.addBreak(fmt.Sprintf("action%ddate", n), a.Date.Original)
		b.addOptBreak(fmt.Sprintf("action%dlink", n), a.Link)
		b.addOptBreak(fmt.Sprintf("action%dresult", n), a.Result)
		b.addOptBreak(fmt.Sprintf("action%doldid", n), a.OldID)
	}

	b.addOptBreak("currentstatus", ah.CurrentStatus)
	b.addOptBreak("maindate", ah.MainDate.Original)
	b.addOptBreak("maindate2", ah.MainDate2.Original)

	for i, itn := range ah.Itns {
		n := i + 1
		b.add(fmt.Sprintf("itn%ddate", n), itn.Date.Original)
		b.addOpt(fmt.Sprintf("itn%dlink", n), itn.Link)
		b.endRecord()
	}

	for i, dyk := range ah.Dyks {
		sfx := subIndex(i + 1)
		b.add(fmt.Sprintf("dyk%sdate", sfx), dyk.Date.Original)
		b.addOpt(fmt.Sprintf("dyk%sentry", sfx), dyk.Entry)
		b.addOpt(fmt.Sprintf("dyk%snom", sfx), dyk.Nom)
		b.flag(fmt.Sprintf("dyk%signoreerror", sfx), dyk.IgnoreError)
		b.endRecord()
	}

	for i, otd := range ah.Otds {
		n := i + 1
		b.add(fmt.Sprintf("otd%ddate", n), otd.Date.Original)
		b.addOpt(fmt.Sprintf("otd%doldid", n), otd.OldID)
		b.addOpt(fmt.Sprintf("otd%dlink", n), otd.Link)
		b.endRecord()
	}

	b.flagBreak("four", ah.Four)

	for i, ft := range ah.FeaturedTops {
		sfx := subIndex(i + 1)
		b.addBreak(fmt.Sprintf("ft%sname", sfx), ft.Name)
		b.flagBreak(fmt.Sprintf("ft%smain", sfx), ft.Main)
	}

	b.addOptBreak("topic", ah.Topic)
	b.flagBreak("collapse", ah.Collapse)
	b.flagBreak("small", ah.Small)

	return b.params
}
