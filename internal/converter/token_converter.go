package converter

import (
	"smart-opd/internal/delivery/dto"
	"smart-opd/internal/domain/entity"
)

// TokenToResponse converts a Token entity to TokenResponse DTO. The display
// code is only rendered when the department prefix is known.
func TokenToResponse(token *entity.Token, prefix string) *dto.TokenResponse {
	if token == nil {
		return nil
	}

	response := &dto.TokenResponse{
		ID:          token.ID,
		PatientName: token.PatientName,
		Phone:       token.Phone,
		Age:         token.Age,
		Gender:      token.Gender,
		Symptoms:    token.Symptoms,
		Department:  token.Department,
		TokenNumber: token.TokenNumber,
		Status:      string(token.Status),
		CreatedAt:   token.CreatedAt,
		CalledAt:    token.CalledAt,
		CompletedAt: token.CompletedAt,
	}

	if prefix != "" {
		response.DisplayCode = entity.DisplayCode(prefix, token.TokenNumber)
	}

	return response
}

// TokensToResponses converts a slice of Token entities to TokenResponse DTOs
func TokensToResponses(tokens []entity.Token, prefix string) []dto.TokenResponse {
	responses := make([]dto.TokenResponse, len(tokens))
	for i, token := range tokens {
		resp := TokenToResponse(&token, prefix)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
