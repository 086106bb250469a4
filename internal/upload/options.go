// Package upload turns a local PDF into an active document: it validates the
// request, inspects the file, ingests and summarizes it, then rolls the
// session and conversation over to the new document.
package upload

// Option is the user's chosen processing mode.
type Option string

const (
	OptionCustomModels Option = "custom-models"
	OptionExternalAPI  Option = "external-api-full"
)

// OptionInfo describes a processing mode for presentation.
type OptionInfo struct {
	Key         Option
	Title       string
	Description string
	SummaryType string
}

// Options lists the available processing modes in display order.
var Options = []OptionInfo{
	{
		Key:         OptionCustomModels,
		Title:       "AI-Powered Summary",
		Description: "Comprehensive summary from models tuned for scientific papers, including text, tables and figures.",
		SummaryType: "comprehensive",
	},
	{
		Key:         OptionExternalAPI,
		Title:       "Expert Analysis",
		Description: "External LLM models analyse and summarize the paper.",
		SummaryType: "executive",
	},
}

// LookupOption finds the info for key.
func LookupOption(key string) (OptionInfo, bool) {
	for _, info := range Options {
		if string(info.Key) == key {
			return info, true
		}
	}
	return OptionInfo{}, false
}

// SummaryType maps the option to the service's summary_type.
func (o Option) SummaryType() string {
	if info, ok := LookupOption(string(o)); ok {
		return info.SummaryType
	}
	return Options[0].SummaryType
}

// Title is the display name, or the raw key for unknown options.
func (o Option) Title() string {
	if info, ok := LookupOption(string(o)); ok {
		return info.Title
	}
	return string(o)
}
