package cmd

import "github.com/pkg/errors"

var errShortReturnParameters = errors.New("cmd: command complete return parameters shorter than expected")
