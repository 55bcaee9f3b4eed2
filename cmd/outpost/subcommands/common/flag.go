package common

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

type CommonFlags struct {
	Profile      string `flag:"profile" help:"profile name to use"`
	ProfileStore string `flag:"profile-store" help:"path to the profile store file"`
}

type commonFlagDetection struct {
	home string
}

type CommonFlagDetectionOption func(*commonFlagDetection) *commonFlagDetection

func WithHome(home string) CommonFlagDetectionOption {
	return func(opt *commonFlagDetection) *commonFlagDetection {
		opt.home = home
		return opt
	}
}

// Flags detects default common flag values.
//
// The profile name comes from the nearest .outpostprofile file found when
// walking up from the given directory; without one, the directory path
// itself is the profile name.
func Flags(from string, opt ...CommonFlagDetectionOption) (CommonFlags, error) {
	detparam := commonFlagDetection{
		home: "",
	}
	for _, o := range opt {
		detparam = *o(&detparam)
	}

	home := detparam.home
	if home == "" {
		_home, err := os.UserHomeDir()
		if err != nil {
			_home = ""
		}
		home = _home
	}

	if _from, err := filepath.Abs(from); err == nil {
		from = _from
	}

	profile := from
	for searchpath := from; ; {
		candidate := path.Join(searchpath, ".outpostprofile")
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			content, err := os.ReadFile(candidate)
			if err != nil {
				return CommonFlags{}, err
			}
			if p := strings.Split(string(content), "\n"); 0 < len(p) {
				profile = strings.TrimSpace(p[0])
			}
			break
		}

		next := path.Dir(searchpath)
		if next == searchpath {
			break
		}
		searchpath = next
	}

	return CommonFlags{
		Profile:      profile,
		ProfileStore: path.Join(home, ".outpost", "profile"),
	}, nil
}
