// internal/core/domain/client.go
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Client is a customer who can receive consignments and purchases.
// Only nome is mandatory; email, cpf, telefone and endereco are optional
// and stored as NULL when absent.
type Client struct {
	ID       int64     `json:"id"`
	Nome     string    `json:"nome"`
	Email    string    `json:"email,omitempty"`
	CPF      string    `json:"cpf,omitempty"`
	Telefone string    `json:"telefone,omitempty"`
	Endereco string    `json:"endereco,omitempty"`
	CriadoEm time.Time `json:"criado_em"`
}

// Validate performs domain validation on the client.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Nome) == "" {
		return fmt.Errorf("nome is required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return fmt.Errorf("email is invalid")
	}
	if c.CPF != "" {
		digits := 0
		for _, r := range c.CPF {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits != 11 {
			return fmt.Errorf("cpf must have 11 digits")
		}
	}
	return nil
}
