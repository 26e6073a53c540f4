// Package catalog loads question catalogs from YAML files into a question
// repository.
package catalog

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Rrens/talent-chat/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// File is the YAML document layout
type File struct {
	Questions []domain.QuestionCreate `yaml:"questions"`
}

// Parse decodes and validates a catalog document
func Parse(r io.Reader) ([]domain.QuestionCreate, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	for i, q := range f.Questions {
		if err := validate.Struct(q); err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return f.Questions, nil
}

// Import creates one question per entry. Entries without an age get defaultAge.
func Import(ctx context.Context, repo domain.QuestionRepository, items []domain.QuestionCreate, defaultAge int) ([]domain.Question, error) {
	created := make([]domain.Question, 0, len(items))
	for _, item := range items {
		age := item.Age
		if age == 0 {
			age = defaultAge
		}

		now := time.Now()
		q := domain.Question{
			ID:        uuid.New(),
			Age:       age,
			Text:      item.Text,
			AudioRef:  item.AudioRef,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.Create(ctx, &q); err != nil {
			return created, fmt.Errorf("failed to import question %q: %w", item.Text, err)
		}
		created = append(created, q)
	}
	return created, nil
}
