package model

type SummaryType string

const (
	SummaryKeyPoints SummaryType = "key-points"
	SummaryTLDR      SummaryType = "tl;dr"
	SummaryTeaser    SummaryType = "teaser"
	SummaryHeadline  SummaryType = "headline"
)

func (t SummaryType) Valid() bool {
	switch t {
	case SummaryKeyPoints, SummaryTLDR, SummaryTeaser, SummaryHeadline:
		return true
	}
	return false
}

type SummaryLength string

const (
	LengthShort  SummaryLength = "short"
	LengthMedium SummaryLength = "medium"
	LengthLong   SummaryLength = "long"
)

func (l SummaryLength) Valid() bool {
	switch l {
	case LengthShort, LengthMedium, LengthLong:
		return true
	}
	return false
}

type SummaryFormat string

const (
	FormatMarkdown  SummaryFormat = "markdown"
	FormatPlainText SummaryFormat = "plain-text"
)

func (f SummaryFormat) Valid() bool {
	return f == FormatMarkdown || f == FormatPlainText
}

type SummarizationPreferences struct {
	DefaultType   SummaryType   `json:"defaultType"`
	DefaultLength SummaryLength `json:"defaultLength"`
	DefaultFormat SummaryFormat `json:"defaultFormat"`
	CustomPrompt  string        `json:"customPrompt,omitempty"`
}

func DefaultSummarizationPreferences() SummarizationPreferences {
	return SummarizationPreferences{
		DefaultType:   SummaryKeyPoints,
		DefaultLength: LengthMedium,
		DefaultFormat: FormatMarkdown,
	}
}

// SummarizationPreferencesPatch is a partial update; nil fields are kept.
type SummarizationPreferencesPatch struct {
	DefaultType   *SummaryType   `json:"defaultType,omitempty"`
	DefaultLength *SummaryLength `json:"defaultLength,omitempty"`
	DefaultFormat *SummaryFormat `json:"defaultFormat,omitempty"`
	CustomPrompt  *string        `json:"customPrompt,omitempty"`
}

func (p SummarizationPreferences) Apply(patch SummarizationPreferencesPatch) SummarizationPreferences {
	if patch.DefaultType != nil {
		p.DefaultType = *patch.DefaultType
	}
	if patch.DefaultLength != nil {
		p.DefaultLength = *patch.DefaultLength
	}
	if patch.DefaultFormat != nil {
		p.DefaultFormat = *patch.DefaultFormat
	}
	if patch.CustomPrompt != nil {
		p.CustomPrompt = *patch.CustomPrompt
	}
	return p
}

// SummarizeOptions are per-call options; empty fields fall back to the
// stored preferences.
type SummarizeOptions struct {
	Type    SummaryType   `json:"type,omitempty"`
	Length  SummaryLength `json:"length,omitempty"`
	Format  SummaryFormat `json:"format,omitempty"`
	Context string        `json:"context,omitempty"`
}

func (p SummarizationPreferences) Merge(opts SummarizeOptions) SummarizeOptions {
	out := SummarizeOptions{
		Type:    p.DefaultType,
		Length:  p.DefaultLength,
		Format:  p.DefaultFormat,
		Context: p.CustomPrompt,
	}
	if opts.Type != "" {
		out.Type = opts.Type
	}
	if opts.Length != "" {
		out.Length = opts.Length
	}
	if opts.Format != "" {
		out.Format = opts.Format
	}
	if opts.Context != "" {
		out.Context = opts.Context
	}
	return out
}

const DefaultTargetLanguage = "en"

// Preferences is the persisted preferences document.
type Preferences struct {
	Summarization           SummarizationPreferences `json:"summarization"`
	PreferredTargetLanguage string                   `json:"preferredTargetLanguage"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Summarization:           DefaultSummarizationPreferences(),
		PreferredTargetLanguage: DefaultTargetLanguage,
	}
}
