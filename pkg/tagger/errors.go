package tagger

import "fmt"

// FetchError means the commit could not be read from the hosting API.
type FetchError struct {
	Owner  string
	Repo   string
	Branch string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch latest commit of %s/%s@%s: %v", e.Owner, e.Repo, e.Branch, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MissingFieldError means the API answered but without the commit identifier.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("api response has no %q field", e.Field)
}

// InvalidCommitError means the identifier is not a lowercase hex object name.
type InvalidCommitError struct {
	SHA string
}

func (e *InvalidCommitError) Error() string {
	return fmt.Sprintf("commit identifier %q is not a lowercase hex object name", e.SHA)
}

type TagCreationError struct {
	Tag string
	Err error
}

func (e *TagCreationError) Error() string {
	return fmt.Sprintf("create tag %s: %v", e.Tag, e.Err)
}

func (e *TagCreationError) Unwrap() error { return e.Err }

type PushError struct {
	Remote string
	Branch string
	Err    error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("push %s and tags to %s: %v", e.Branch, e.Remote, e.Err)
}

func (e *PushError) Unwrap() error { return e.Err }
