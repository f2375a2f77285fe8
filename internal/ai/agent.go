package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// Answer is the structured reply the assistant returns for a ledger question.
type Answer struct {
	Answer          string   `json:"answer" jsonschema_description:"A direct answer to the user's question, grounded in the provided invoice and forecast data"`
	RelatedInvoices []string `json:"related_invoices" jsonschema_description:"Invoice numbers the answer is based on; empty if none apply"`
	Confidence      float64  `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
}

type AgentService interface {
	AnswerQuestion(ctx context.Context, question, invoiceContext, forecastContext string) (*Answer, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// AnswerQuestion answers a natural-language question about the invoice ledger.
// The caller supplies the invoice and forecast summaries; the agent never
// reaches into the database itself.
func (a *Agent) AnswerQuestion(ctx context.Context, question, invoiceContext, forecastContext string) (*Answer, error) {
	prompt := fmt.Sprintf(`You are an assistant for an invoice-tracking system.
Answer questions about the organization's invoices and expected (forecast) invoices.
Rules:
1. Use ONLY the data provided below; never invent invoices or amounts.
2. Amounts are exact decimal strings; quote them as given.
3. An expected invoice represents a recurring obligation believed due but not yet invoiced.
4. If the data cannot answer the question, say so and set confidence low.

Invoices:
%s

Expected invoices:
%s

Question: %s`, invoiceContext, forecastContext, question)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "ledger_answer",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A grounded answer to a question about the invoice ledger"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var answer Answer
	if err := json.Unmarshal([]byte(content), &answer); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	return &answer, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v Answer
	return reflector.Reflect(v)
}
