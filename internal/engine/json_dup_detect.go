package engine

// DetectJSONDuplicateKeysBytes reports duplicate object keys with the JSON
// Pointer of each repeated key. If onDup is DupIgnore, no issues are
// produced. maxIssues < 0 means unlimited; 0 means disabled; >0 sets limit.
func DetectJSONDuplicateKeysBytes(data []byte, onDup DuplicateStrictness, maxIssues int) ([]SimpleIssue, error) {
	if onDup == DupIgnore {
		return nil, nil
	}
	_, issues, err := Decode(data, Options{OnDuplicate: onDup, MaxIssues: maxIssues})
	if ie, ok := err.(IssueError); ok && ie.Code == "duplicate_key" {
		return issues, nil
	}
	return issues, err
}
