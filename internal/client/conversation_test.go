package client_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"persona-chat/internal/client"
	"persona-chat/internal/models"
)

type fakeRelayer struct {
	reply string
	err   error
	sent  [][]models.Turn
}

func (f *fakeRelayer) Chat(_ context.Context, conversation []models.Turn) (string, error) {
	f.sent = append(f.sent, conversation)
	return f.reply, f.err
}

type fakeRenderer struct {
	events  []string
	pending int
}

func (f *fakeRenderer) RenderUser(text string)  { f.events = append(f.events, "user:"+text) }
func (f *fakeRenderer) RenderModel(text string) { f.events = append(f.events, "model:"+text) }
func (f *fakeRenderer) RenderFailure(text string) {
	f.events = append(f.events, "failure:"+text)
}
func (f *fakeRenderer) ShowPending() func() {
	f.pending++
	f.events = append(f.events, "pending")
	return func() {
		f.pending--
		f.events = append(f.events, "cleared")
	}
}

var _ = Describe("Conversation", func() {
	var (
		relay    *fakeRelayer
		renderer *fakeRenderer
		conv     *client.Conversation
		ctx      context.Context
	)

	BeforeEach(func() {
		relay = &fakeRelayer{}
		renderer = &fakeRenderer{}
		conv = client.NewConversation(relay, renderer)
		ctx = context.Background()
	})

	Describe("Submit", func() {
		It("sends the full transcript and appends the reply", func() {
			relay.reply = "Hi there"
			reply, err := conv.Submit(ctx, "Hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(Equal("Hi there"))

			relay.reply = "Fine, thanks"
			_, err = conv.Submit(ctx, "How are you?")
			Expect(err).NotTo(HaveOccurred())

			Expect(relay.sent).To(HaveLen(2))
			Expect(relay.sent[0]).To(Equal([]models.Turn{{Role: "user", Text: "Hello"}}))
			Expect(relay.sent[1]).To(Equal([]models.Turn{
				{Role: "user", Text: "Hello"},
				{Role: "model", Text: "Hi there"},
				{Role: "user", Text: "How are you?"},
			}))
			Expect(conv.Turns()).To(HaveLen(4))
		})

		It("renders the user turn before the pending placeholder and clears it before the reply", func() {
			relay.reply = "**bold**"
			_, err := conv.Submit(ctx, "  Hello  ")
			Expect(err).NotTo(HaveOccurred())

			Expect(renderer.events).To(Equal([]string{"user:Hello", "pending", "cleared", "model:**bold**"}))
			Expect(renderer.pending).To(BeZero())
		})

		It("never sends the pending placeholder", func() {
			relay.reply = "ok"
			_, err := conv.Submit(ctx, "Hello")
			Expect(err).NotTo(HaveOccurred())
			for _, turn := range relay.sent[0] {
				Expect(turn.Text).NotTo(ContainSubstring("Thinking"))
			}
		})

		It("ignores blank input", func() {
			_, err := conv.Submit(ctx, "   ")
			Expect(err).To(MatchError(client.ErrEmptyMessage))
			Expect(relay.sent).To(BeEmpty())
			Expect(conv.Turns()).To(BeEmpty())
		})

		It("keeps the user turn after a transport failure", func() {
			relay.err = errors.New("connection refused")
			_, err := conv.Submit(ctx, "Hello")
			Expect(err).To(HaveOccurred())

			Expect(conv.Turns()).To(Equal([]models.Turn{{Role: "user", Text: "Hello"}}))
			Expect(renderer.events).To(ContainElement("failure:" + client.TransportErrorMessage))
			Expect(renderer.pending).To(BeZero())

			relay.err = nil
			relay.reply = "Back online"
			_, err = conv.Submit(ctx, "Still there?")
			Expect(err).NotTo(HaveOccurred())
			Expect(relay.sent[1]).To(Equal([]models.Turn{
				{Role: "user", Text: "Hello"},
				{Role: "user", Text: "Still there?"},
			}))
		})

		It("shows the no-response message for server errors", func() {
			relay.err = &client.APIError{StatusCode: 500, Message: "quota exceeded"}
			_, err := conv.Submit(ctx, "Hello")
			Expect(err).To(HaveOccurred())
			Expect(renderer.events).To(ContainElement("failure:" + client.NoResponseMessage))
		})

		It("does not append an empty reply", func() {
			relay.reply = ""
			reply, err := conv.Submit(ctx, "Hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(reply).To(BeEmpty())
			Expect(conv.Turns()).To(HaveLen(1))
			Expect(renderer.events).To(ContainElement("failure:" + client.NoResponseMessage))
		})
	})

	Describe("Turns", func() {
		It("returns a copy", func() {
			conv.AppendUserTurn("a")
			turns := conv.Turns()
			turns[0].Text = "mutated"
			Expect(conv.Turns()[0].Text).To(Equal("a"))
		})

		It("records appended turns with their roles", func() {
			conv.AppendUserTurn("question")
			conv.AppendModelTurn("answer")
			Expect(conv.Turns()).To(Equal([]models.Turn{
				{Role: models.RoleUser, Text: "question"},
				{Role: models.RoleModel, Text: "answer"},
			}))
			Expect(renderer.events).To(Equal([]string{"user:question", "model:answer"}))
		})
	})
})
