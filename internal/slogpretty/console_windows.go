// Copyright 2023 GreyXor. All rights reserved.
// Mount of this source code is governed by a MIT license that can be found
// at https://gitlab.com/greyxor/slogor/-/blob/main/LICENSE?ref_type=heads.

package slogpretty

import (
	"os"

	"golang.org/x/sys/windows"
)

// init turns on virtual terminal processing for stdout and stderr, so escape sequences are
// rendered as colors. Handles that are not attached to a console are left untouched.
func init() {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		enableVirtualTerminal(windows.Handle(f.Fd()))
	}
}

func enableVirtualTerminal(h windows.Handle) {
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return
	}

	// See https://learn.microsoft.com/en-us/windows/console/setconsolemode
	_ = windows.SetConsoleMode(h, mode|windows.ENABLE_PROCESSED_OUTPUT|
		windows.ENABLE_WRAP_AT_EOL_OUTPUT|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
