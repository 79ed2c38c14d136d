// Package intent is the offline copywriter: it maps a chat message to one of a
// closed set of edits and applies the edit as a single atomic patch batch.
package intent

import (
	"strings"

	"github.com/ziadkadry99/onepage/internal/document"
)

// Intent is the classified purpose of a chat message.
type Intent string

const (
	Evaluate           Intent = "evaluate"
	RewriteDescription Intent = "rewrite_description"
	RegenerateFeatures Intent = "regenerate_features"
	RewriteTagline     Intent = "rewrite_tagline"
	Help               Intent = "help"
)

type rule struct {
	intent   Intent
	keywords []string
}

// rules are checked in order; the first rule with a matching keyword wins.
var rules = []rule{
	{Evaluate, []string{"评价", "建议", "review"}},
	{RewriteDescription, []string{"介绍", "简介", "description", "文案"}},
	{RegenerateFeatures, []string{"功能", "feature"}},
	{RewriteTagline, []string{"名称", "标题", "name", "slogan"}},
}

// Classify returns the intent of text. Matching is a case-insensitive
// substring search.
func Classify(text string) Intent {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.intent
			}
		}
	}
	return Help
}

// Reply is the planned outcome of an intent: the message to show and the
// patches that must be applied before it is shown.
type Reply struct {
	Intent  Intent           `json:"intent"`
	Message string           `json:"message"`
	Patches []document.Patch `json:"patches,omitempty"`
}

// Mutates reports whether the reply changes the Document.
func (r Reply) Mutates() bool { return len(r.Patches) > 0 }

// Plan returns the canned reply for i.
func Plan(i Intent) Reply {
	switch i {
	case Evaluate:
		return Reply{Intent: i, Message: critiqueReport}
	case RewriteDescription:
		return Reply{
			Intent:  i,
			Message: replyDescription,
			Patches: []document.Patch{document.Replace("tabs.overview.summary", highConversionSummary)},
		}
	case RegenerateFeatures:
		return Reply{
			Intent:  i,
			Message: replyFeatures,
			Patches: []document.Patch{document.Replace("tabs.overview.features", generatedFeatures)},
		}
	case RewriteTagline:
		return Reply{
			Intent:  i,
			Message: replyTagline,
			Patches: []document.Patch{document.Replace("appInfo.tagline", generatedTagline)},
		}
	default:
		return Reply{Intent: Help, Message: capabilityMenu}
	}
}

// Execute classifies text, applies the planned patches to d and returns the
// reply. On error d is unchanged and no reply should be shown.
func Execute(d *document.Document, text string) (Reply, error) {
	r := Plan(Classify(text))
	if r.Mutates() {
		if err := d.Apply(r.Patches...); err != nil {
			return Reply{}, err
		}
	}
	return r, nil
}
