package main

import (
	"fmt"

	"github.com/mitchellh/go-homedir"

	"github.com/nanotts/nanotts/internal/config"
	"github.com/nanotts/nanotts/internal/sink"
)

// outputRequest is the output part of the command line.
type outputRequest struct {
	path   string // -o
	wav    bool   // -w
	prefix bool   // --prefix given
	stdout bool
	play   bool
	noPlay bool
}

// resolveOutputs turns the request into sink modes and, for file output,
// the path to write. Without -o an auto-numbered name is chosen.
func resolveOutputs(req outputRequest, out config.OutputConfig) (sink.Mode, string, error) {
	var (
		modes sink.Mode
		path  string
	)

	switch {
	case req.path != "":
		modes |= sink.ModeFile
		path = req.path
	case req.wav || req.prefix:
		dir, err := homedir.Expand(out.Dir)
		if err != nil {
			return 0, "", fmt.Errorf("%w: %w", errSinkOpen, err)
		}
		naming := sink.Naming{
			Dir:     dir,
			Prefix:  out.Prefix,
			Suffix:  out.Suffix,
			ZeroPad: out.ZeroPad,
		}
		next, err := naming.Next()
		if err != nil {
			return 0, "", fmt.Errorf("%w: %w", errSinkOpen, err)
		}
		modes |= sink.ModeFile
		path = next
	}

	if req.stdout {
		modes |= sink.ModeStdout
	}
	if req.play && !req.noPlay {
		modes |= sink.ModePlayback
	}

	if modes == 0 {
		return 0, "", fmt.Errorf("%w: use -o, -w, -c or -p", sink.ErrNoOutput)
	}
	return modes, path, nil
}
