package transfer_test

import (
	"fmt"
	"testing"

	"github.com/amirasaad/speibank/pkg/testutils"
	webtestutils "github.com/amirasaad/speibank/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const (
	senderClabe    = "646180218000000101"
	recipientClabe = "646180218000000202"
	externalClabe  = "012180001234567891"
)

type TransferTestSuite struct {
	suite.Suite
	env    *webtestutils.Env
	sender uuid.UUID
	token  string
}

func (s *TransferTestSuite) SetupTest() {
	s.env = webtestutils.NewEnv(s.T(), nil)
	s.sender = s.env.OpenAccount(s.T(), senderClabe, "500")
	s.token = s.env.Token(s.T(), s.sender)
}

func TestTransferTestSuite(t *testing.T) {
	suite.Run(t, new(TransferTestSuite))
}

func body(account, accountType string, amount string) string {
	return fmt.Sprintf(
		`{"recipient_name":"Luis Pérez","recipient_account":%q,"account_type":%q,"amount":%s,"concept":"Renta"}`,
		account, accountType, amount,
	)
}

func (s *TransferTestSuite) post(payload, token string) (int, map[string]any) {
	resp := testutils.MakeRequest(s.env.App, fiber.MethodPost, "/transfers", payload, token)
	status := resp.StatusCode
	if status == fiber.StatusOK {
		out := testutils.DecodeResponse(s.T(), resp)
		data, _ := out.Data.(map[string]any)
		return status, data
	}
	pd := testutils.DecodeProblem(s.T(), resp)
	errs, _ := pd.Errors.(map[string]any)
	return status, errs
}

func (s *TransferTestSuite) TestInternalTransfer() {
	recipient := s.env.OpenAccount(s.T(), recipientClabe, "0")

	status, data := s.post(body(recipientClabe, "clabe", "100"), s.token)
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal(true, data["success"])
	s.Equal(true, data["is_internal"])
	s.Equal("0.00", data["commission"])
	s.Equal("400.00", data["new_balance"])
	s.NotEmpty(data["tracking_code"])
	s.Empty(s.env.Gateway.Sent())

	acc, ok := s.env.Store.Account(recipient)
	s.Require().True(ok)
	s.True(acc.Balance.Equal(decimal.RequireFromString("100")))
}

func (s *TransferTestSuite) TestExternalTransfer() {
	status, data := s.post(body(externalClabe, "clabe", `"100.00"`), s.token)
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal(false, data["is_internal"])
	s.Equal("5.80", data["commission"])
	s.Equal("394.20", data["new_balance"])

	sent := s.env.Gateway.Sent()
	s.Require().Len(sent, 1)
	s.Equal(externalClabe, sent[0].BeneficiaryAccount)
	s.Equal(data["tracking_code"], sent[0].TrackingCode)
}

func (s *TransferTestSuite) TestWithoutAuth() {
	resp := testutils.MakeRequest(s.env.App, fiber.MethodPost, "/transfers", body(externalClabe, "clabe", "1"), "")
	defer resp.Body.Close() //nolint: errcheck
	s.Equal(fiber.StatusUnauthorized, resp.StatusCode)
}

func (s *TransferTestSuite) TestValidation() {
	cases := []struct {
		name    string
		payload string
	}{
		{"unknown account type", body(externalClabe, "iban", "10")},
		{"non numeric account", body("abc", "clabe", "10")},
		{"zero amount", body(externalClabe, "clabe", "0")},
		{"too precise", body(externalClabe, "clabe", "10.001")},
		{"card without bank", body("4152313412345678", "card", "10")},
		{"malformed json", `{"recipient_name":`},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			status, _ := s.post(tc.payload, s.token)
			s.Equal(fiber.StatusBadRequest, status)
		})
	}
	s.Empty(s.env.Gateway.Sent())
}

func (s *TransferTestSuite) TestInsufficientFunds() {
	status, result := s.post(body(externalClabe, "clabe", "494.21"), s.token)
	s.Equal(fiber.StatusUnprocessableEntity, status)
	s.Require().NotNil(result)
	res, ok := result["result"].(map[string]any)
	s.Require().True(ok)
	s.Equal(false, res["success"])
	s.Equal("FAILED", res["state"])
}

func (s *TransferTestSuite) TestSelfTransfer() {
	status, _ := s.post(body(senderClabe, "clabe", "10"), s.token)
	s.Equal(fiber.StatusUnprocessableEntity, status)
}

func (s *TransferTestSuite) TestInternalRecipientNotFound() {
	status, _ := s.post(body("646180218000009999", "clabe", "10"), s.token)
	s.Equal(fiber.StatusNotFound, status)
}

func (s *TransferTestSuite) TestGatewayRejection() {
	s.env.Gateway.RejectNext("cuenta inexistente")

	status, result := s.post(body(externalClabe, "clabe", "10"), s.token)
	s.Equal(fiber.StatusBadGateway, status)
	res, ok := result["result"].(map[string]any)
	s.Require().True(ok)
	s.Contains(res["message"], "cuenta inexistente")

	acc, ok := s.env.Store.Account(s.sender)
	s.Require().True(ok)
	s.True(acc.Balance.Equal(decimal.RequireFromString("500")))
}
