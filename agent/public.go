package agent

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	finkitty "github.com/jeanflower/FinKitty-sub001"
	"github.com/jeanflower/FinKitty-sub001/docs"
	"github.com/jeanflower/FinKitty-sub001/renderer"
)

const model = "gemini-2.5-pro"

// ModelFile is the model the assistant's tools operate on. The assist
// command points it at the -model flag before starting the agent.
var ModelFile = "model.json"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert skills available from the Tools and ask them questions.
			They are at your service and fully dedicated to you; they keep context of your previous questions.

			The user is here to understand his long-term financial plan: assets, debts,
			incomes, expenses, pensions and taxes, simulated years into the future.
			Devise a plan of questions to ask each expert and come up with the best
			response to the user's request.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAdviser is an expert grounded in current financial news and products.
func NewAdviser() *Expert {
	return &Expert{
		Name: "Adviser",
		Description: `This is an expert financial adviser,
		well aware of financial products, pension rules and the latest market news.
		Ask the Adviser whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert financial adviser. You can search and find anything related
			to pensions, tax rules, markets and financial products. You leverage Google
			Search to ground your assertions.
				`}}},
		},
	}
}

// NewPlanner is the expert in charge of the user's own model: it can check
// it, simulate it and report the projected values and taxes.
func NewPlanner() *Expert {
	lib := []Function{CheckFunc, EvaluateFunc}

	return &Expert{
		Name: "Planner",
		Description: `This is the Planner. He is in charge of the user's financial model file.
		He can validate the model and simulate it over any horizon to report projected
		asset values, incomes, expenses and taxes.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a financial planner in charge of the user's model.
				You know how to use the Tools to validate the model and to simulate it
				over a horizon, reporting projected values and tax charges.
				You are part of a team of experts; yours is everything about the user's
				own plan. Pardon their approximate language and figure out what they meant.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements Function over a declaration and a closure.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func errResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"error": err.Error(),
		},
	}
}

// CheckFunc validates the user's model file.
var CheckFunc = &Func{
	Decl: &genai.FunctionDeclaration{
		Name: "CheckModel",
		Description: `CheckModel validates the user's financial model: references,
		dates, numbers, recurrences and liabilities. It returns either a success
		message or the list of problems found.`,
		Parameters: &genai.Schema{Type: genai.TypeObject},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "The validation outcome, one message per problem.",
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		m, err := loadModel()
		if err != nil {
			return errResponse(id, "CheckModel", err)
		}
		issues := finkitty.CheckModel(m)
		if len(issues) == 0 {
			return &genai.FunctionResponse{
				ID: id, Name: "CheckModel",
				Response: map[string]any{"output": finkitty.CheckOKMessage},
			}
		}
		var b strings.Builder
		for _, issue := range issues {
			b.WriteString(issue.Message())
			b.WriteString("\n")
		}
		return &genai.FunctionResponse{
			ID: id, Name: "CheckModel",
			Response: map[string]any{"output": b.String()},
		}
	},
}

// EvaluateFunc simulates the user's model over a horizon.
var EvaluateFunc = &Func{
	Decl: &genai.FunctionDeclaration{
		Name: "Evaluate",
		Description: `Evaluate simulates the user's financial model between two dates and
		returns a markdown report of projected assets, debts, incomes, expenses,
		taxes and settings.`,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"start": {
					Type: genai.TypeString,
					Description: `Start of the reported window, a date or a trigger name
					from the model. Accepted date formats:

					` + must(docs.GetTopic("triggers")),
				},
				"end": {
					Type:        genai.TypeString,
					Description: "End of the reported window, a date or a trigger name.",
				},
			},
			Required: []string{"start", "end"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "A markdown report of the simulated window.",
		},
	},
	Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
		start, ok := args["start"].(string)
		if !ok {
			return errResponse(id, "Evaluate", fmt.Errorf("argument 'start' is not a string but %T", args["start"]))
		}
		end, ok := args["end"].(string)
		if !ok {
			return errResponse(id, "Evaluate", fmt.Errorf("argument 'end' is not a string but %T", args["end"]))
		}
		m, err := loadModel()
		if err != nil {
			return errResponse(id, "Evaluate", err)
		}
		view := finkitty.View{
			ROIStart:  start,
			ROIEnd:    end,
			Frequency: "annually",
			Detail:    finkitty.DetailCoarse,
		}
		report, err := finkitty.Evaluate(m, view, finkitty.DefaultTaxRules())
		if err != nil {
			return errResponse(id, "Evaluate", err)
		}
		return &genai.FunctionResponse{
			ID: id, Name: "Evaluate",
			Response: map[string]any{
				"output": renderer.ReportMarkdown(report, renderer.Options{SkipTable: true}),
			},
		}
	},
}

// loadModel reads and decodes the assistant's model file.
func loadModel() (*finkitty.Model, error) {
	data, err := os.ReadFile(ModelFile)
	if err != nil {
		return nil, fmt.Errorf("could not read model file %q: %w", ModelFile, err)
	}
	return finkitty.DecodeModel(data)
}
