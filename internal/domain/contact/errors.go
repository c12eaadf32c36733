package contact

import "errors"

var ErrUnresolvedMapping = errors.New("mapping contains unresolved placeholder")
