package document

import "errors"

var ErrUnknownKind = errors.New("unknown document kind")
