package blueprint

import (
	eng "github.com/jarch-dev/blueprint/internal/engine"
)

// DuplicateKeys lists every repeated object key in data, each with the JSON
// Pointer of the repeat. DecodeDocument stops at the first one; this keeps
// going so a whole file can be linted in one pass.
func DuplicateKeys(data []byte, maxIssues int) (Issues, error) {
	si, err := eng.DetectJSONDuplicateKeysBytes(data, eng.DupWarn, maxIssues)
	if err != nil {
		return nil, fromEngineIssues(nil, err)
	}
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, Issue{Code: s.Code, Path: s.Path, Message: s.Message})
	}
	return iss, nil
}
