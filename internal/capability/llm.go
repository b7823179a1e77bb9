package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"lingochat-backend/internal/config"
	"lingochat-backend/internal/model"
	"lingochat-backend/internal/notify"
	"lingochat-backend/pkg/logger"

	"github.com/cloudwego/eino/components/prompt"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type runnable = compose.Runnable[map[string]any, *schema.Message]

const (
	translateSystemPrompt = "You are a translation engine. Translate the user's text from {source} to {target}. " +
		"Keep the meaning, tone and formatting. Reply with the translation only, without quotes or explanations."

	detectSystemPrompt = "You identify the language of the user's text. Reply with a single JSON object of the form " +
		"{format} where code is an ISO 639-1 code and confidence is between 0 and 1. Use \"und\" when unsure."

	detectFormat = `{"code": "en", "confidence": 0.95}`

	summarizeSystemPrompt = "You are a summarization engine. {instructions}"
)

type capabilityName string

const (
	capTranslation   capabilityName = "translation"
	capDetection     capabilityName = "detection"
	capSummarization capabilityName = "summarization"
)

// translator is a chain compiled for one language pair; the pair is part
// of its system prompt, so only the text varies per call.
type translator struct {
	source string
	target string
	system string
	chain  runnable
}

func translatorPrompt(source, target string) string {
	return strings.NewReplacer(
		"{source}", LanguageName(source),
		"{target}", LanguageName(target),
	).Replace(translateSystemPrompt)
}

// LLMProvider implements Provider on top of an eino chat model. Each
// capability is a compiled ChatTemplate -> ChatModel chain.
type LLMProvider struct {
	chatModel einoModel.BaseChatModel
	caps      config.CapabilitiesConfig
	publisher notify.Publisher

	detector   runnable
	summarizer runnable

	mu          sync.Mutex
	translators map[string]*translator
	announced   map[capabilityName]bool
}

func NewLLMProvider(ctx context.Context, chatModel einoModel.BaseChatModel, caps config.CapabilitiesConfig, publisher notify.Publisher) (*LLMProvider, error) {
	if publisher == nil {
		publisher = notify.Nop{}
	}

	detector, err := buildChain(ctx, chatModel, detectSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("build detection chain: %w", err)
	}

	summarizer, err := buildChain(ctx, chatModel, summarizeSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("build summarization chain: %w", err)
	}

	return &LLMProvider{
		chatModel:   chatModel,
		caps:        caps,
		publisher:   publisher,
		detector:    detector,
		summarizer:  summarizer,
		translators: make(map[string]*translator),
		announced:   make(map[capabilityName]bool),
	}, nil
}

func buildChain(ctx context.Context, chatModel einoModel.BaseChatModel, system string) (runnable, error) {
	template := prompt.FromMessages(schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage("{text}"),
	)

	return compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(template).
		AppendChatModel(chatModel).
		Compile(ctx)
}

func (p *LLMProvider) Capabilities() Capabilities {
	return Capabilities{
		Translation:   p.caps.Translation.Enabled,
		Detection:     p.caps.Detection.Enabled,
		Summarization: p.caps.Summarization.Enabled,
	}
}

func (p *LLMProvider) capabilityConfig(name capabilityName) config.CapabilityConfig {
	switch name {
	case capTranslation:
		return p.caps.Translation
	case capDetection:
		return p.caps.Detection
	default:
		return p.caps.Summarization
	}
}

// ensure checks that a capability can be used now. Unavailable and
// downloading states are announced once per capability.
func (p *LLMProvider) ensure(name capabilityName) error {
	cc := p.capabilityConfig(name)
	if !cc.Enabled {
		return fmt.Errorf("%w: %s", ErrCapabilityUnsupported, name)
	}

	p.mu.Lock()
	first := !p.announced[name]
	p.announced[name] = true
	p.mu.Unlock()

	switch Availability(cc.Availability) {
	case AvailabilityNo:
		if first {
			p.publisher.Publish(notify.LevelError, fmt.Sprintf("%s unavailable", cases.Title(language.English).String(string(name))),
				"The model for this capability is not available on this host.")
		}
		return fmt.Errorf("%w: %s", ErrCapabilityUnavailable, name)
	case AvailabilityAfterDownload:
		if first {
			p.publisher.Publish(notify.LevelInfo, "Downloading model",
				fmt.Sprintf("The %s model is being prepared, the first request may take longer.", name))
		}
	}
	return nil
}

func (p *LLMProvider) translatorFor(ctx context.Context, source, target string) (*translator, error) {
	key := source + "-" + target

	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.translators[key]; ok {
		return t, nil
	}

	system := translatorPrompt(source, target)
	chain, err := buildChain(ctx, p.chatModel, system)
	if err != nil {
		return nil, fmt.Errorf("build translator %s: %w", key, err)
	}

	t := &translator{source: source, target: target, system: system, chain: chain}
	p.translators[key] = t

	logger.Infof("Translator initialized for %s", key)
	p.publisher.Publish(notify.LevelSuccess, "Translator initialized",
		fmt.Sprintf("%s to %s", LanguageName(source), LanguageName(target)))
	return t, nil
}

func (p *LLMProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if err := p.ensure(capTranslation); err != nil {
		return "", err
	}

	source, target := NormalizeCode(sourceLang), NormalizeCode(targetLang)
	if !IsSupportedPair(source, target) {
		return "", fmt.Errorf("%w: %s to %s", ErrUnsupportedPair, sourceLang, targetLang)
	}

	t, err := p.translatorFor(ctx, source, target)
	if err != nil {
		return "", err
	}

	out, err := t.chain.Invoke(ctx, map[string]any{"text": text})
	if err != nil {
		return "", fmt.Errorf("translate %s-%s: %w", source, target, err)
	}

	translation := strings.TrimSpace(out.Content)
	if translation == "" {
		return "", ErrEmptyModelReply
	}
	return translation, nil
}

type detectionReply struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
}

func (p *LLMProvider) DetectLanguage(ctx context.Context, text string) (*Detection, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if err := p.ensure(capDetection); err != nil {
		return nil, err
	}

	out, err := p.detector.Invoke(ctx, map[string]any{
		"text":   text,
		"format": detectFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("detect language: %w", err)
	}

	return parseDetection(out.Content)
}

// parseDetection extracts the JSON object from a model reply, tolerating
// code fences and surrounding prose.
func parseDetection(reply string) (*Detection, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("detect language: no JSON object in reply %q", reply)
	}

	var r detectionReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &r); err != nil {
		return nil, fmt.Errorf("detect language: %w", err)
	}

	code := NormalizeCode(r.Code)
	if code == "" {
		return nil, nil
	}

	confidence := r.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &Detection{
		Code:       code,
		Name:       LanguageName(code),
		Confidence: confidence,
	}, nil
}

func (p *LLMProvider) Summarize(ctx context.Context, text string, opts model.SummarizeOptions) (*SummaryResult, error) {
	if strings.TrimSpace(text) == "" {
		return &SummaryResult{Status: SummarySuccess}, nil
	}
	if err := p.ensure(capSummarization); err != nil {
		return &SummaryResult{Status: SummaryError, Error: err.Error()}, err
	}

	out, err := p.summarizer.Invoke(ctx, summarizeVariables(text, opts))
	if err != nil {
		err = fmt.Errorf("summarize: %w", err)
		return &SummaryResult{Status: SummaryError, Error: err.Error()}, err
	}

	return finishSummary(out.Content)
}

func (p *LLMProvider) SummarizeStream(ctx context.Context, text string, opts model.SummarizeOptions, onChunk func(string)) (*SummaryResult, error) {
	if strings.TrimSpace(text) == "" {
		return &SummaryResult{Status: SummarySuccess}, nil
	}
	if err := p.ensure(capSummarization); err != nil {
		return &SummaryResult{Status: SummaryError, Error: err.Error()}, err
	}

	stream, err := p.summarizer.Stream(ctx, summarizeVariables(text, opts))
	if err != nil {
		err = fmt.Errorf("summarize: %w", err)
		return &SummaryResult{Status: SummaryError, Error: err.Error()}, err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			err = fmt.Errorf("summarize stream: %w", err)
			return &SummaryResult{Status: SummaryError, Error: err.Error()}, err
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		sb.WriteString(msg.Content)
		if onChunk != nil {
			onChunk(msg.Content)
		}
	}

	return finishSummary(sb.String())
}

func finishSummary(content string) (*SummaryResult, error) {
	summary := strings.TrimSpace(content)
	if summary == "" {
		return &SummaryResult{Status: SummaryError, Error: ErrEmptyModelReply.Error()}, ErrEmptyModelReply
	}
	return &SummaryResult{Summary: summary, Status: SummarySuccess}, nil
}

func summarizeVariables(text string, opts model.SummarizeOptions) map[string]any {
	return map[string]any{
		"text":         text,
		"instructions": summaryInstructions(opts),
	}
}

// summaryInstructions turns summarize options into prompt instructions.
// Empty options fall back to the default preferences.
func summaryInstructions(opts model.SummarizeOptions) string {
	opts = model.DefaultSummarizationPreferences().Merge(opts)

	var b strings.Builder
	switch opts.Type {
	case model.SummaryTLDR:
		b.WriteString("Write a short and to-the-point overview of the text, suitable for a busy reader.")
	case model.SummaryTeaser:
		b.WriteString("Write a teaser that focuses on the most interesting parts of the text and draws the reader in.")
	case model.SummaryHeadline:
		b.WriteString("Write a single headline that captures the main point of the text.")
	default:
		b.WriteString("Extract the most important points of the text as a bulleted list.")
	}

	b.WriteString(" ")
	b.WriteString(lengthInstruction(opts.Type, opts.Length))

	if opts.Format == model.FormatPlainText {
		b.WriteString(" Use plain text without any Markdown.")
	} else {
		b.WriteString(" Format the output as Markdown.")
	}

	if ctx := strings.TrimSpace(opts.Context); ctx != "" {
		b.WriteString(" Additional context from the reader: ")
		b.WriteString(ctx)
	}

	b.WriteString(" Reply with the summary only.")
	return b.String()
}

func lengthInstruction(t model.SummaryType, l model.SummaryLength) string {
	idx := map[model.SummaryLength]int{model.LengthShort: 0, model.LengthMedium: 1, model.LengthLong: 2}[l]

	switch t {
	case model.SummaryHeadline:
		return fmt.Sprintf("Use at most %d words.", []int{12, 17, 22}[idx])
	case model.SummaryTLDR, model.SummaryTeaser:
		return fmt.Sprintf("Use at most %d sentences.", []int{1, 3, 5}[idx])
	default:
		return fmt.Sprintf("Use at most %d bullet points.", []int{3, 5, 7}[idx])
	}
}
