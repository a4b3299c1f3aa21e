package llmclient

import "context"

// FakeClient is a test double satisfying Client. It can be configured
// to return fixed text, a fixed error, or to record every call it
// received for assertions.
type FakeClient struct {
	Text  string
	Err   error
	Calls []FakeCall
}

// FakeCall records one Generate invocation.
type FakeCall struct {
	Model  string
	Prompt string
}

func (f *FakeClient) Generate(_ context.Context, model, prompt string) (string, error) {
	f.Calls = append(f.Calls, FakeCall{Model: model, Prompt: prompt})
	if f.Err != nil {
		return "", f.Err
	}
	return f.Text, nil
}

// SequenceClient returns successive responses/errors for each call in
// order, falling back to the last entry once exhausted. Used by the
// capture tests, where one capture makes an enhancement call and then
// a tagging call that need different responses.
type SequenceClient struct {
	Responses []string
	Errors    []error
	calls     int
}

func (s *SequenceClient) Generate(_ context.Context, _, _ string) (string, error) {
	i := s.calls
	if i >= len(s.Responses) {
		i = len(s.Responses) - 1
	}
	s.calls++
	var err error
	if i >= 0 && i < len(s.Errors) {
		err = s.Errors[i]
	}
	var text string
	if i >= 0 && i < len(s.Responses) {
		text = s.Responses[i]
	}
	return text, err
}
