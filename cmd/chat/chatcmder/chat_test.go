package chatcmder

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"persona-chat/internal/handlers"
	"persona-chat/internal/instruction"
	"persona-chat/internal/router"
	"persona-chat/internal/services"
)

type scriptedProvider struct {
	mu       sync.Mutex
	requests []services.GenerateRequest
}

func (p *scriptedProvider) Generate(_ context.Context, req services.GenerateRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	last := req.Contents[len(req.Contents)-1].Parts[0].Text
	return "echo: " + last, nil
}

var _ = Describe("Chat Command", func() {
	var (
		srv      *httptest.Server
		store    *instruction.Store
		provider *scriptedProvider
	)

	BeforeEach(func() {
		store = instruction.NewStore("default persona")
		provider = &scriptedProvider{}
		relay, err := services.NewChatRelay(provider, store, services.RelayConfig{Model: "test-model"}, nil)
		Expect(err).NotTo(HaveOccurred())

		srv = httptest.NewServer(router.New(
			handlers.NewInstructionHandler(store, nil, nil),
			handlers.NewChatHandler(relay, nil),
			nil,
			"",
			[]string{"*"},
			zap.NewNop(),
		))
	})

	AfterEach(func() {
		srv.Close()
	})

	execute := func(stdin string, args ...string) (string, error) {
		cmd := NewChatCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(append([]string{"--server", srv.URL}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	It("sends the growing transcript for each line", func() {
		out, err := execute("Hello\n\nHow are you?\n/quit\nignored\n")
		Expect(err).NotTo(HaveOccurred())

		Expect(out).To(ContainSubstring("Persona: default persona"))
		Expect(out).To(ContainSubstring("echo: Hello"))
		Expect(out).To(ContainSubstring("echo: How are you?"))

		Expect(provider.requests).To(HaveLen(2))
		Expect(provider.requests[0].Contents).To(HaveLen(1))
		Expect(provider.requests[1].Contents).To(HaveLen(3))
		Expect(provider.requests[1].Contents[1].Role).To(Equal("model"))
	})

	It("replaces the instruction before chatting", func() {
		out, err := execute("Hi\n", "--instruction", "  Be terse.  ")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Persona: Be terse."))
		Expect(store.Get()).To(Equal("Be terse."))
		Expect(provider.requests[0].SystemInstruction).To(Equal("Be terse."))
	})

	It("shows and sets the instruction through the subcommand", func() {
		out, err := execute("", "instruction")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("default persona\n"))

		out, err = execute("", "instruction", "set", "Speak", "like", "a", "pirate.")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Instruction updated: Speak like a pirate."))
		Expect(store.Get()).To(Equal("Speak like a pirate."))
	})

	It("refuses a blank instruction", func() {
		_, err := execute("", "instruction", "set", "   ")
		Expect(err).To(HaveOccurred())
		Expect(store.Get()).To(Equal("default persona"))
	})

	It("fails when the server is unreachable", func() {
		srv.Close()
		_, err := execute("Hello\n")
		Expect(err).To(MatchError(ContainSubstring("could not reach")))
	})
})
