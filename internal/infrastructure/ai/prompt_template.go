package ai

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/doeshing/reelai/internal/domain"
	"github.com/doeshing/reelai/internal/ports"
)

const systemTemplate = `You are a film and television curator.
Recommend exactly {{.Limit}} {{.MediaLabel}} that match the request.
Respond with ONLY a JSON array, no prose, where each element is
{"title": string, "type": "movie"|"tv"|"anime", "reason": string, "year": number}.
Keep each reason to one sentence explaining why it fits.
{{- if .Exclude}}
Do not recommend any of: {{.Exclude}}.
{{- end}}`

const userTemplate = `{{.Prompt}}`

var (
	systemTmpl = template.Must(template.New("system").Parse(systemTemplate))
	userTmpl   = template.Must(template.New("user").Parse(userTemplate))
)

type templateData struct {
	Prompt     string
	MediaLabel string
	Limit      int
	Exclude    string
}

// renderPromptMessages expands the recommendation request into system and user messages.
func renderPromptMessages(def domain.ProviderDefinition, req ports.ProviderRequest) ([]promptMessage, error) {
	data := templateData{
		Prompt:     strings.TrimSpace(req.Prompt),
		MediaLabel: mediaLabel(req.MediaType),
		Limit:      def.EffectiveLimit(req.Limit),
		Exclude:    strings.Join(req.Exclude, "; "),
	}

	system, err := executeTemplate(systemTmpl, data)
	if err != nil {
		return nil, err
	}
	user, err := executeTemplate(userTmpl, data)
	if err != nil {
		return nil, err
	}
	return []promptMessage{
		{Role: "system", Content: strings.TrimSpace(system)},
		{Role: "user", Content: strings.TrimSpace(user)},
	}, nil
}

func executeTemplate(tmpl *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func mediaLabel(mediaType domain.MediaType) string {
	switch mediaType {
	case domain.MediaMovie:
		return "movies"
	case domain.MediaTV:
		return "TV series"
	case domain.MediaAnime:
		return "anime titles"
	case domain.MediaAnimation:
		return "animated films"
	default:
		return "movies or TV series"
	}
}

func splitSystemMessages(messages []promptMessage) (string, []promptMessage) {
	var systemLines []string
	var chat []promptMessage
	for _, msg := range messages {
		if strings.EqualFold(msg.Role, "system") {
			systemLines = append(systemLines, msg.Content)
			continue
		}
		chat = append(chat, msg)
	}
	return strings.TrimSpace(strings.Join(systemLines, "\n")), chat
}
