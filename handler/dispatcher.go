// Package handler drives completions: the dispatcher that turns a prompt
// plus conversation state into a finished completion, the interactive
// action controller for shell and code results, and the REPL loop.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sgpt/cache"
	"sgpt/config"
	"sgpt/model"
	"sgpt/role"
	"sgpt/storage"
	"sgpt/ui"
)

// ErrCompletionService marks a failed remote completion call. The
// dispatcher performs no retry; a failed call never appends a partial
// exchange to the conversation and never populates the cache.
var ErrCompletionService = errors.New("completion service error")

// Request describes one completion to dispatch.
type Request struct {
	Prompt string
	// ChatID names the conversation whose transcript is loaded and
	// appended to. Empty means one-shot: no transcript, no persistence
	// (used by the Describe action).
	ChatID  string
	Role    *role.SystemRole
	Options model.CompletionOptions
	// Stream renders chunks as they arrive. When false the caller
	// receives the final text and renders it itself.
	Stream bool
}

// Dispatcher composes the outgoing message list, consults the cache,
// calls the provider on a miss and persists the finished exchange.
type Dispatcher struct {
	provider     model.Provider
	chats        *storage.ChatStorage
	cache        *cache.Store
	renderer     *ui.Renderer
	historyLimit int
}

// NewDispatcher wires a dispatcher. historyLimit bounds how many
// transcript messages are sent back to the provider per request.
func NewDispatcher(provider model.Provider, chats *storage.ChatStorage, cacheStore *cache.Store, renderer *ui.Renderer, historyLimit int) *Dispatcher {
	return &Dispatcher{
		provider:     provider,
		chats:        chats,
		cache:        cacheStore,
		renderer:     renderer,
		historyLimit: historyLimit,
	}
}

// Complete runs one completion request end to end and returns the final
// text. On success the user and assistant messages (and the role's
// system message, the first time) are appended to the conversation.
func (d *Dispatcher) Complete(ctx context.Context, req Request) (string, error) {
	var transcript []model.Message
	if req.ChatID != "" {
		var err error
		transcript, err = d.chats.Read(req.ChatID)
		if err != nil {
			return "", err
		}
	}

	// The messages persisted on success, in order. The system message is
	// stored with the transcript so it is injected exactly once per
	// conversation, not repeated every turn.
	var toAppend []model.Message

	var outgoing []model.Message
	if req.Role != nil && req.Role.Prompt != "" && !model.HasSystem(transcript) {
		system := model.NewMessage(model.RoleSystem, req.Role.Prompt)
		outgoing = append(outgoing, system)
		toAppend = append(toAppend, system)
	}
	outgoing = append(outgoing, truncateTranscript(transcript, d.historyLimit)...)

	user := model.NewMessage(model.RoleUser, req.Prompt)
	outgoing = append(outgoing, user)
	toAppend = append(toAppend, user)

	modelID := req.Options.EffectiveModel(d.provider)
	fingerprint := cache.Fingerprint(outgoing, modelID, req.Options.Temperature, req.Options.TopP)

	chunks, hit := d.cache.Lookup(fingerprint)
	if hit {
		if config.DebugLog != nil {
			config.DebugLog.Printf("cache hit for %s", fingerprint[:12])
		}
		if req.Stream {
			for _, chunk := range chunks {
				d.renderer.Chunk(chunk)
			}
			d.renderer.EndCompletion()
		}
	} else {
		var err error
		chunks, err = d.callProvider(ctx, outgoing, req)
		if err != nil {
			return "", err
		}
		if err := d.cache.Store(fingerprint, chunks); err != nil && config.DebugLog != nil {
			// A full disk or evicted db never fails the completion itself.
			config.DebugLog.Printf("cache store failed: %v", err)
		}
	}

	text := strings.Join(chunks, "")

	if req.ChatID != "" {
		toAppend = append(toAppend, model.NewMessage(model.RoleAssistant, text))
		if err := d.chats.Append(req.ChatID, toAppend...); err != nil {
			return "", err
		}
	}

	return text, nil
}

// callProvider performs the remote call, collecting chunks in arrival
// order and rendering them if the request streams.
func (d *Dispatcher) callProvider(ctx context.Context, outgoing []model.Message, req Request) ([]string, error) {
	var chunks []string
	err := d.provider.Complete(ctx, outgoing, req.Options, func(chunk string) error {
		chunks = append(chunks, chunk)
		if req.Stream {
			d.renderer.Chunk(chunk)
		}
		return nil
	})
	if err != nil {
		if req.Stream && len(chunks) > 0 {
			d.renderer.EndCompletion()
		}
		// An interrupted stream is a cancellation, not a service failure.
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCompletionService, err)
	}
	if req.Stream {
		d.renderer.EndCompletion()
	}
	return chunks, nil
}

// truncateTranscript bounds the transcript sent to the provider, always
// preserving a leading system message so the role survives long chats.
func truncateTranscript(transcript []model.Message, limit int) []model.Message {
	if limit <= 0 || len(transcript) <= limit {
		return transcript
	}

	if transcript[0].Role == model.RoleSystem {
		kept := transcript[len(transcript)-(limit-1):]
		result := make([]model.Message, 0, limit)
		result = append(result, transcript[0])
		return append(result, kept...)
	}
	return transcript[len(transcript)-limit:]
}
