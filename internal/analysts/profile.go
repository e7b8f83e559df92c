package analysts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/dyike/compdata/internal/logging"
	"github.com/dyike/compdata/models"
)

const profileTemplate = `### SCRAPED TEXT FROM WEBSITE
{page_text}

### INSTRUCTION:
Extract company details from the scraped text. If any information is missing, research it yourself and provide relevant information. Return a JSON object with the keys:
- company_name
- website
- headquarters
- industry
- employee_count
- ceo
- founded
- competitors

Ensure the response is a valid JSON object, without any extra text or formatting like Markdown.`

var codeFence = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \t]*\n?(.*?)\n?[ \t]*```$")

// ProfileExtractor asks a chat model to structure scraped page text into a
// company profile.
type ProfileExtractor struct {
	runnable compose.Runnable[map[string]any, *schema.Message]
	timeout  time.Duration
	logger   logrus.FieldLogger
}

func NewProfileExtractor(ctx context.Context, chatModel model.BaseChatModel, timeout time.Duration, logger logrus.FieldLogger) (*ProfileExtractor, error) {
	template := prompt.FromMessages(schema.FString,
		schema.UserMessage(profileTemplate),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.
		AppendChatTemplate(template).
		AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx, compose.WithGraphName("profile_extractor"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile profile extractor chain: %w", err)
	}

	return &ProfileExtractor{
		runnable: runnable,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Extract runs the model over snippet. A failed model call wraps
// models.ErrExtractionFailed; an unusable answer wraps models.ErrExtractionParse.
func (p *ProfileExtractor) Extract(ctx context.Context, snippet string) (*models.CompanyProfile, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	logger := logging.FromContext(ctx, p.logger)
	msg, err := p.runnable.Invoke(callCtx, map[string]any{"page_text": snippet},
		compose.WithCallbacks(newLogCallback(logger)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty model response", models.ErrExtractionParse)
	}

	logger.WithField("response", msg.Content).Debug("profile model response")

	return ParseProfile(msg.Content)
}

// ParseProfile decodes a model answer that must be exactly one JSON object,
// optionally wrapped in a single Markdown code fence. Missing keys and JSON
// nulls leave the field nil; non-string values are rendered as text.
func ParseProfile(content string) (*models.CompanyProfile, error) {
	content = strings.TrimSpace(content)
	if m := codeFence.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}

	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionParse, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing content after JSON object", models.ErrExtractionParse)
	}
	fields, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object", models.ErrExtractionParse)
	}

	return &models.CompanyProfile{
		CompanyName:   field(fields, "company_name"),
		Website:       field(fields, "website"),
		Headquarters:  field(fields, "headquarters"),
		Industry:      field(fields, "industry"),
		EmployeeCount: field(fields, "employee_count"),
		CEO:           field(fields, "ceo"),
		Founded:       field(fields, "founded"),
		Competitors:   field(fields, "competitors"),
	}, nil
}

func field(fields map[string]any, key string) *string {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil
	}
	s := stringify(v)
	return &s
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, elem := range t {
			if elem == nil {
				continue
			}
			parts = append(parts, stringify(elem))
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
