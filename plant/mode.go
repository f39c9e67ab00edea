package plant

import "fmt"

// Mode selects which of the two model variants is run. It changes both how
// neighborhoods are counted and what stage offspring disperse as:
//
//   - AdultDispersal: neighborhoods count resident adults only, and each
//     adult's offspring are staged as age-0 adults.
//   - JuvenileDispersal: neighborhoods count adults and juveniles
//     combined, and offspring disperse as age-0 juveniles.
type Mode uint8

const (
	AdultDispersal Mode = iota
	JuvenileDispersal
)

// String returns the mode's config name.
func (m Mode) String() string {
	switch m {
	case AdultDispersal:
		return "adult"
	case JuvenileDispersal:
		return "juvenile"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "adult":
		return AdultDispersal, nil
	case "juvenile":
		return JuvenileDispersal, nil
	}
	return 0, fmt.Errorf("plant: unknown dispersal mode %q", s)
}
