// Command openai-stub is a deterministic OpenAI-compatible server for local
// runs and end-to-end tests. It answers restyle prompts without a model.
package main

import (
	"encoding/json"
	"html"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/restyle/internal/prompt"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		// the prompt is the last user message
		user := ""
		for _, m := range req.Messages {
			if m.Role == "user" {
				user = m.Content
			}
		}
		input, ok := userInput(user)
		if !ok {
			http.Error(w, "unexpected prompt", http.StatusBadRequest)
			return
		}
		content := "Restyled: " + input
		if strings.Contains(user, prompt.LabelTemplateMarkup) {
			// fenced on purpose: real models often ignore the no-fence rule
			content = "```html\n<h1 class=\"text-3xl font-bold text-gray-900 mb-4\">Restyled</h1>" +
				"<p class=\"text-base text-gray-700 leading-relaxed mb-4\">" + html.EscapeString(input) + "</p>\n```"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		})
	})
	return mux
}

// userInput returns the text of the user input section of a restyle prompt.
func userInput(p string) (string, bool) {
	i := strings.Index(p, prompt.LabelUserInput+"\n")
	if i < 0 {
		return "", false
	}
	rest := p[i+len(prompt.LabelUserInput)+1:]
	// the closing instruction follows the last blank line
	if j := strings.LastIndex(rest, "\n\n"); j >= 0 {
		rest = rest[:j]
	}
	return rest, true
}
