package settings

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xoralabs/ftt-backend-ico/internal/domain/model"
	"github.com/xoralabs/ftt-backend-ico/internal/store"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var (
	ErrEmptyContent   = errors.New("site content must not be empty")
	ErrInvalidContent = errors.New("site content is not valid JSON")
)

// Payload is what the public site loads on start.
type Payload struct {
	Theme   json.RawMessage `json:"theme"`
	Content json.RawMessage `json:"content"`
}

type defaults struct {
	Theme   map[string]any `yaml:"theme"`
	Content map[string]any `yaml:"content"`
}

var loadDefaults = sync.OnceValues(func() (Payload, error) {
	return parseDefaults(defaultsYAML)
})

func parseDefaults(raw []byte) (Payload, error) {
	var d defaults
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Payload{}, fmt.Errorf("parse default site settings: %w", err)
	}
	if d.Theme == nil || d.Content == nil {
		return Payload{}, errors.New("default site settings need theme and content")
	}
	theme, err := json.Marshal(d.Theme)
	if err != nil {
		return Payload{}, fmt.Errorf("encode default theme: %w", err)
	}
	content, err := json.Marshal(d.Content)
	if err != nil {
		return Payload{}, fmt.Errorf("encode default content: %w", err)
	}
	return Payload{Theme: theme, Content: content}, nil
}

// Service serves the admin-editable site content over the embedded defaults.
type Service struct {
	repo     store.SiteSettingsRepository
	defaults Payload
	logger   *slog.Logger
	nowFn    func() time.Time
}

func NewService(repo store.SiteSettingsRepository, logger *slog.Logger) (*Service, error) {
	d, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	return &Service{
		repo:     repo,
		defaults: d,
		logger:   logger.With("component", "settings"),
		nowFn:    time.Now,
	}, nil
}

// Get returns the default theme with the stored content, or the default
// content when nothing is stored or the store cannot be read.
func (s *Service) Get(ctx context.Context) (Payload, error) {
	out := Payload{Theme: s.defaults.Theme, Content: s.defaults.Content}

	stored, err := s.repo.Get(ctx, model.SettingKeySiteContent)
	if err != nil {
		s.logger.Warn("load site content failed, serving defaults", "error", err)
		return out, nil
	}
	if stored != nil && !isEmptyJSON(stored.Value) {
		out.Content = stored.Value
	}
	return out, nil
}

// SaveContent replaces the stored site content and returns it compacted.
func (s *Service) SaveContent(ctx context.Context, content json.RawMessage) (json.RawMessage, error) {
	if isEmptyJSON(content) {
		return nil, ErrEmptyContent
	}
	if !json.Valid(content) {
		return nil, ErrInvalidContent
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, content); err != nil {
		return nil, ErrInvalidContent
	}
	value := json.RawMessage(buf.Bytes())

	if err := s.repo.Upsert(ctx, &model.SiteSettings{
		Key:       model.SettingKeySiteContent,
		Value:     value,
		UpdatedAt: s.nowFn().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("save site content: %w", err)
	}
	s.logger.Info("site content saved", "bytes", len(value))
	return value, nil
}

// isEmptyJSON matches the values the admin panel treats as "no content".
func isEmptyJSON(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", `""`, "false", "0":
		return true
	}
	return false
}
