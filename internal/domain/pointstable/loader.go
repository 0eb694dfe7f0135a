package pointstable

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads a YAML points table from path, layered over Default().
// Keys absent from the file keep their default value; list keys present in
// the file replace the default list entirely.
func Load(_ context.Context, path string) (Table, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrLoadTable, err)
	}

	t := Default()
	// Decoding into a non-empty slice overwrites element by element and
	// would keep trailing defaults.
	if k.Exists("batting_milestones") {
		t.BattingMilestones = nil
	}
	if k.Exists("wicket_hauls") {
		t.WicketHauls = nil
	}
	if k.Exists("catch_milestones") {
		t.CatchMilestones = nil
	}
	if k.Exists("duck_exempt_roles") {
		t.DuckExemptRoles = nil
	}

	if err := k.UnmarshalWithConf("", &t, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrLoadTable, err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}
