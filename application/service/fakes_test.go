package service

import (
	"context"
	"sync"

	"github.com/helixml/autocommit/domain/commit"
	"github.com/helixml/autocommit/infrastructure/provider"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	content string
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeGenerator) ChatCompletion(ctx context.Context, req provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	f.mu.Lock()
	for _, m := range req.Messages() {
		f.prompts = append(f.prompts, m.Content())
	}
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return provider.ChatCompletionResponse{}, ctx.Err()
		}
	}
	if f.err != nil {
		return provider.ChatCompletionResponse{}, f.err
	}
	return provider.NewChatCompletionResponse(f.content, "stop", provider.NewUsage(1, 1, 2)), nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeVCS struct {
	mu        sync.Mutex
	root      string
	rootErr   error
	files     []string
	filesErr  error
	diff      string
	diffErr   error
	commitErr error
	sha       string
	commits   []string

	listCalls int
	diffCalls int
}

func (f *fakeVCS) ResolveRepositoryRoot(string) (string, error) {
	return f.root, f.rootErr
}

func (f *fakeVCS) ModifiedFiles(context.Context, string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.files, f.filesErr
}

func (f *fakeVCS) DiffText(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.diffCalls++
	return f.diff, f.diffErr
}

// reads reports how often the modified-file list and the diff were fetched.
func (f *fakeVCS) reads() (list, diff int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.diffCalls
}

func (f *fakeVCS) StageAndCommit(_ context.Context, _ string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, message)
	return nil
}

func (f *fakeVCS) HeadCommit(context.Context, string) (string, error) {
	return f.sha, nil
}

func (f *fakeVCS) committed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commits))
	copy(out, f.commits)
	return out
}

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []commit.Attempt
}

func (f *fakeRecorder) Save(_ context.Context, a commit.Attempt) (commit.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a = a.WithID(int64(len(f.attempts) + 1))
	f.attempts = append(f.attempts, a)
	return a, nil
}

func (f *fakeRecorder) all() []commit.Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]commit.Attempt, len(f.attempts))
	copy(out, f.attempts)
	return out
}

const sampleDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -3 +3,2 @@
-	fmt.Println("hi")
+	fmt.Println("hello")
+	fmt.Println("world")
`
