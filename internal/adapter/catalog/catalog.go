package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
)

var _ secondary.ProblemCatalog = (*Catalog)(nil)

type problemFile struct {
	Problems []problemEntry `yaml:"problems"`
}

type problemEntry struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Difficulty  string            `yaml:"difficulty"`
	Tags        []string          `yaml:"tags"`
	StarterCode map[string]string `yaml:"starterCode"`
	TestCases   []testCaseEntry   `yaml:"testCases"`
}

type testCaseEntry struct {
	Input    interface{} `yaml:"input"`
	Expected interface{} `yaml:"expected"`
	Hidden   bool        `yaml:"hidden"`
}

// Catalog is an in-memory, read-only problem catalog.
type Catalog struct {
	problems []*domain.Problem
	byID     map[string]*domain.Problem
}

// LoadFile reads a YAML problem catalog from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open problem catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a YAML problem catalog.
func Load(r io.Reader) (*Catalog, error) {
	var file problemFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode problem catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]*domain.Problem, len(file.Problems))}
	for i, entry := range file.Problems {
		p, err := entry.toDomain()
		if err != nil {
			return nil, fmt.Errorf("problem #%d (%s): %w", i+1, entry.ID, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate problem id %q", p.ID)
		}
		c.byID[p.ID] = p
		c.problems = append(c.problems, p)
	}
	return c, nil
}

func (e problemEntry) toDomain() (*domain.Problem, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	difficulty, ok := domain.ParseDifficulty(e.Difficulty)
	if !ok {
		return nil, fmt.Errorf("invalid difficulty %q", e.Difficulty)
	}

	p := &domain.Problem{
		ID:          id,
		Title:       e.Title,
		Description: strings.TrimSpace(e.Description),
		Difficulty:  difficulty,
		Tags:        e.Tags,
		StarterCode: make(map[domain.Language]string, len(e.StarterCode)),
		TestCases:   make([]domain.TestCase, 0, len(e.TestCases)),
	}
	for name, code := range e.StarterCode {
		lang, ok := domain.ParseLanguage(name)
		if !ok {
			return nil, fmt.Errorf("unsupported starter code language %q", name)
		}
		p.StarterCode[lang] = code
	}
	for i, tc := range e.TestCases {
		input, err := domain.ValueFromAny(tc.Input)
		if err != nil {
			return nil, fmt.Errorf("test case %d input: %w", i+1, err)
		}
		expected, err := domain.ValueFromAny(tc.Expected)
		if err != nil {
			return nil, fmt.Errorf("test case %d expected: %w", i+1, err)
		}
		p.TestCases = append(p.TestCases, domain.TestCase{Input: input, Expected: expected, Hidden: tc.Hidden})
	}
	return p, nil
}

func (c *Catalog) List(ctx context.Context) ([]*domain.Problem, error) {
	out := make([]*domain.Problem, len(c.problems))
	copy(out, c.problems)
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (*domain.Problem, error) {
	return c.byID[id], nil
}
