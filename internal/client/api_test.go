package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"persona-chat/internal/client"
	"persona-chat/internal/models"
)

var _ = Describe("API", func() {
	var (
		srv         *httptest.Server
		api         *client.API
		instruction string
		lastChat    []models.Turn
	)

	BeforeEach(func() {
		instruction = "default"
		lastChat = nil

		mux := http.NewServeMux()
		mux.HandleFunc("GET /api/instruction", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(models.InstructionResponse{Instruction: instruction})
		})
		mux.HandleFunc("POST /api/instruction", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Instruction string `json:"instruction"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			instruction = req.Instruction
			json.NewEncoder(w).Encode(models.InstructionUpdatedResponse{Message: "Instruction updated", Instruction: instruction})
		})
		mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				Conversation []models.Turn `json:"conversation"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			lastChat = req.Conversation
			if len(req.Conversation) > 0 && req.Conversation[len(req.Conversation)-1].Text == "boom" {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(models.ErrorResponse{Message: "provider exploded"})
				return
			}
			json.NewEncoder(w).Encode(models.ChatResponse{Result: "Hi there"})
		})

		srv = httptest.NewServer(mux)
		api = client.NewAPI(srv.URL+"/", srv.Client())
	})

	AfterEach(func() {
		srv.Close()
	})

	It("reads and writes the instruction", func() {
		got, err := api.GetInstruction(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal("default"))

		got, err = api.SetInstruction(context.Background(), "Be terse.")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal("Be terse."))

		got, err = api.GetInstruction(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal("Be terse."))
	})

	It("posts the conversation and returns the result", func() {
		turns := []models.Turn{{Role: "user", Text: "Hello"}}
		got, err := api.Chat(context.Background(), turns)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal("Hi there"))
		Expect(lastChat).To(Equal(turns))
	})

	It("sends an empty array rather than null", func() {
		_, err := api.Chat(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(lastChat).NotTo(BeNil())
		Expect(lastChat).To(BeEmpty())
	})

	It("surfaces the server's error message", func() {
		_, err := api.Chat(context.Background(), []models.Turn{{Role: "user", Text: "boom"}})
		var apiErr *client.APIError
		Expect(err).To(BeAssignableToTypeOf(apiErr))
		Expect(err.(*client.APIError).StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(err.(*client.APIError).Message).To(Equal("provider exploded"))
	})

	It("reports transport failures", func() {
		srv.Close()
		_, err := api.GetInstruction(context.Background())
		Expect(err).To(MatchError(ContainSubstring("HTTP request failed")))
	})
})
