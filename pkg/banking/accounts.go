// Package banking defines the banking tools served to agent clients
package banking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/10aParikh/nessie-mcp-server/pkg/nessie"
	"github.com/10aParikh/nessie-mcp-server/pkg/protocol"
	"github.com/10aParikh/nessie-mcp-server/pkg/tools"
)

// GetCustomerAccountsTool returns the get_customer_accounts tool definition
func GetCustomerAccountsTool(client *nessie.Client) *tools.Definition {
	schema := protocol.ObjectSchema(map[string]*protocol.JSONSchema{
		"customerId": protocol.StringSchema("The ID of the customer whose accounts to retrieve"),
	}, []string{"customerId"})

	return tools.NewTool(
		"get_customer_accounts",
		"Get all accounts for a specific customer",
		schema,
		func(ctx context.Context, arguments map[string]interface{}) (*tools.Result, error) {
			customerID, _ := arguments["customerId"].(string)
			return getCustomerAccounts(ctx, client, customerID), nil
		},
	)
}

func getCustomerAccounts(ctx context.Context, client *nessie.Client, customerID string) *tools.Result {
	payload, apiErr := client.Call(ctx, http.MethodGet, "/customers/"+customerID+"/accounts", nil)
	if apiErr != nil {
		return tools.NewErrorResult("Error: " + apiErr.JSON())
	}

	return tools.NewSuccessResult(formatAccounts(payload))
}

// formatAccounts renders the upstream payload as a human-readable account
// listing. The upstream shape is not trusted: anything that is not a list of
// account records falls back to a raw dump.
func formatAccounts(payload json.RawMessage) string {
	var decoded interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "Accounts response was not valid JSON: " + string(payload)
	}

	switch accounts := decoded.(type) {
	case nil:
		return "No accounts found."
	case []interface{}:
		if len(accounts) == 0 {
			return "No accounts found."
		}

		lines := make([]string, 0, len(accounts)+1)
		lines = append(lines, "Accounts found:")
		for _, entry := range accounts {
			account, ok := entry.(map[string]interface{})
			if !ok {
				lines = append(lines, fmt.Sprintf("- %v", entry))
				continue
			}
			lines = append(lines, fmt.Sprintf("- %v (%v): $%v (ID: %v)",
				account["nickname"], account["type"], account["balance"], account["_id"]))
		}
		return strings.Join(lines, "\n")
	default:
		// Unexpected upstream shape, show it verbatim
		return "Unexpected accounts response: " + string(payload)
	}
}
