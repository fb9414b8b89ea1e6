// Package questpack loads quest and badge catalogs from YAML files so a
// class can be seeded without clicking every quest together by hand.
package questpack

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/abontemps/classquest/internal/engine"
	"github.com/abontemps/classquest/internal/models"
)

// Pack is the on-disk catalog format.
type Pack struct {
	Name   string  `yaml:"name"`
	Quests []Quest `yaml:"quests"`
	Badges []Badge `yaml:"badges"`
}

// Quest describes one quest entry of a pack.
type Quest struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	XP       int    `yaml:"xp"`
	Type     string `yaml:"type"`
	Target   string `yaml:"target"`
	Category string `yaml:"category"`
	Active   *bool  `yaml:"active"`
}

// Badge describes one badge definition of a pack.
type Badge struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Rule     *Rule  `yaml:"rule"`
}

// Rule is the auto-award condition of a badge.
type Rule struct {
	Type      string `yaml:"type"`
	Threshold int    `yaml:"threshold"`
	Category  string `yaml:"category"`
}

// Load reads and validates a pack file.
func Load(path string) (*Pack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quest pack: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates pack bytes. Unknown fields are rejected so a
// typo in a hand-edited file fails loudly instead of silently dropping data.
func Parse(raw []byte) (*Pack, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var pack Pack
	if err := dec.Decode(&pack); err != nil {
		return nil, fmt.Errorf("failed to parse quest pack: %w", err)
	}
	if err := pack.validate(); err != nil {
		return nil, err
	}
	return &pack, nil
}

func (p *Pack) validate() error {
	seen := make(map[string]bool)
	for i, q := range p.Quests {
		if q.ID == "" {
			return fmt.Errorf("quest %d: missing id", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("quest %q: duplicate id", q.ID)
		}
		seen[q.ID] = true
		if q.Name == "" {
			return fmt.Errorf("quest %q: missing name", q.ID)
		}
		switch q.Type {
		case models.QuestDaily, models.QuestRepeatable, models.QuestOneoff:
		default:
			return fmt.Errorf("quest %q: unknown type %q", q.ID, q.Type)
		}
		switch q.Target {
		case "", models.TargetIndividual, models.TargetTeam:
		default:
			return fmt.Errorf("quest %q: unknown target %q", q.ID, q.Target)
		}
	}

	seen = make(map[string]bool)
	for i, b := range p.Badges {
		if b.ID == "" {
			return fmt.Errorf("badge %d: missing id", i)
		}
		if seen[b.ID] {
			return fmt.Errorf("badge %q: duplicate id", b.ID)
		}
		seen[b.ID] = true
		if b.Name == "" {
			return fmt.Errorf("badge %q: missing name", b.ID)
		}
		if b.Rule != nil {
			switch b.Rule.Type {
			case models.RuleTotalXP, models.RuleCategoryXP:
			default:
				return fmt.Errorf("badge %q: unknown rule type %q", b.ID, b.Rule.Type)
			}
			if b.Rule.Threshold <= 0 {
				return fmt.Errorf("badge %q: rule threshold must be positive", b.ID)
			}
		}
	}
	return nil
}

// QuestModels converts the pack quests to domain quests, filling defaults.
func (p *Pack) QuestModels() []models.Quest {
	quests := make([]models.Quest, 0, len(p.Quests))
	for _, q := range p.Quests {
		active := true
		if q.Active != nil {
			active = *q.Active
		}
		target := q.Target
		if target == "" {
			target = models.TargetIndividual
		}
		quests = append(quests, models.Quest{
			ID:       q.ID,
			Name:     q.Name,
			XP:       q.XP,
			Type:     q.Type,
			Target:   target,
			Category: q.Category,
			Active:   active,
		})
	}
	return quests
}

// BadgeModels converts the pack badges to domain badge definitions.
func (p *Pack) BadgeModels() []models.BadgeDefinition {
	defs := make([]models.BadgeDefinition, 0, len(p.Badges))
	for _, b := range p.Badges {
		def := models.BadgeDefinition{
			ID:       b.ID,
			Name:     b.Name,
			Category: b.Category,
		}
		if b.Rule != nil {
			def.Rule = &models.BadgeRule{
				Type:      b.Rule.Type,
				Threshold: b.Rule.Threshold,
				Category:  b.Rule.Category,
			}
		}
		defs = append(defs, def)
	}
	return defs
}

// Apply merges the pack into a state. Entries whose id already exists are
// skipped, so re-applying a pack is harmless.
func (p *Pack) Apply(st *models.AppState) *models.AppState {
	for _, q := range p.QuestModels() {
		st = engine.AddQuest(st, q)
	}
	for _, d := range p.BadgeModels() {
		st = engine.AddBadgeDefinition(st, d)
	}
	return st
}
