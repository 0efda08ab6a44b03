package stackops

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/Liquid4All/on-prem-stack/internal/core/stack"
	"github.com/Liquid4All/on-prem-stack/internal/shell/configstore"
	"github.com/Liquid4All/on-prem-stack/internal/shell/smoke"
)

// TestResult holds the responses of a smoke test.
type TestResult struct {
	Models     *smoke.ModelList
	Completion *smoke.ChatResponse
}

// Test calls the served model through the stack API: it lists the models
// and asks one chat question with the configured bearer token.
func (s *Service) Test(ctx context.Context, baseURL string) (*TestResult, error) {
	cfg, err := configstore.Load(s.paths.Config)
	if err != nil {
		return nil, err
	}

	apiSecret, _ := configstore.GetValue(cfg, "stack.api_secret", stack.LookupOptions{}, nil)
	modelName, _ := configstore.GetValue(cfg, "stack.model_name", stack.LookupOptions{}, nil)

	var problems []stack.FieldProblem
	if apiSecret == "" {
		problems = append(problems, stack.FieldProblem{Field: "stack.api_secret", Rule: "required"})
	}
	if modelName == "" {
		problems = append(problems, stack.FieldProblem{Field: "stack.model_name", Rule: "required"})
	}
	if len(problems) > 0 {
		return nil, &stack.ValidationError{Problems: problems}
	}

	client := smoke.NewClient(smoke.Config{BaseURL: baseURL, APIKey: apiSecret}, s.logger)

	s.printf("Testing API call to get available models...\n")
	models, err := client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	s.printJSON(models.Raw)

	s.printf("\nTesting model call...\n")
	completion, err := client.ChatCompletion(ctx, smoke.NewTestRequest(modelName))
	if err != nil {
		return nil, err
	}
	s.printJSON(completion.Raw)

	return &TestResult{Models: models, Completion: completion}, nil
}

func (s *Service) printJSON(raw json.RawMessage) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Debug("response is not JSON", zap.Error(err))
		s.printf("%s\n", raw)
		return
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.printf("%s\n", raw)
		return
	}
	s.printf("%s\n", pretty)
}
