package banking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/10aParikh/nessie-mcp-server/pkg/nessie"
	"github.com/10aParikh/nessie-mcp-server/pkg/protocol"
	"github.com/10aParikh/nessie-mcp-server/pkg/tools"
)

// transferRequest is the body for a Nessie balance transfer
type transferRequest struct {
	Medium          string  `json:"medium"`
	PayeeID         string  `json:"payee_id"`
	Amount          float64 `json:"amount"`
	TransactionDate string  `json:"transaction_date"`
}

// TransferMoneyTool returns the transfer_money tool definition.
//
// Amount sign and payer/payee identity are not checked here: the upstream
// service is the authority on business-rule rejection, and its rejections
// surface through the failure path.
func TransferMoneyTool(client *nessie.Client) *tools.Definition {
	schema := protocol.ObjectSchema(map[string]*protocol.JSONSchema{
		"payerId": protocol.StringSchema("The account ID to transfer money from"),
		"payeeId": protocol.StringSchema("The account ID to transfer money to"),
		"amount":  protocol.NumberSchema("The amount of money to transfer"),
	}, []string{"payerId", "payeeId", "amount"})

	return tools.NewTool(
		"transfer_money",
		"Transfer money between two accounts",
		schema,
		func(ctx context.Context, arguments map[string]interface{}) (*tools.Result, error) {
			payerID, _ := arguments["payerId"].(string)
			payeeID, _ := arguments["payeeId"].(string)
			amount, _ := arguments["amount"].(float64)
			return transferMoney(ctx, client, payerID, payeeID, amount), nil
		},
	)
}

func transferMoney(ctx context.Context, client *nessie.Client, payerID, payeeID string, amount float64) *tools.Result {
	body := transferRequest{
		Medium:          "balance",
		PayeeID:         payeeID,
		Amount:          amount,
		TransactionDate: time.Now().Format("2006-01-02"),
	}

	payload, apiErr := client.Call(ctx, http.MethodPost, "/accounts/"+payerID+"/transfers", body)
	if apiErr != nil {
		return tools.NewErrorResult("Failed: " + apiErr.JSON())
	}

	var response struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(payload, &response)
	if response.Message == "" {
		response.Message = "transfer accepted"
	}

	text := fmt.Sprintf("Transfer Successful: %s\nSent $%v from %s to %s",
		response.Message, amount, payerID, payeeID)
	return tools.NewSuccessResult(text)
}
