package services

import (
	"fmt"

	"ledgerProject/models"
	"ledgerProject/utils"
)

// anchorPayload формирует строку, по которой считается HMAC-штамп якоря
func anchorPayload(anchor *models.BalanceAnchor) string {
	return fmt.Sprintf("%d|%d|%s|%s",
		anchor.AccountID,
		anchor.TenantID,
		anchor.Balance.StringFixed(2),
		DateOnly(anchor.AnchorDate).Format("2006-01-02"),
	)
}

// StampAnchor проставляет HMAC-штамп целостности. При пустом ключе якорь
// остается без подписи (легаси-режим).
func StampAnchor(anchor *models.BalanceAnchor, key []byte) {
	if len(key) == 0 {
		return
	}
	anchor.Signature = utils.GenerateHMAC(anchorPayload(anchor), key)
}

// VerifyAnchorStamp проверяет штамп. Якоря без подписи считаются легаси и
// проходят проверку.
func VerifyAnchorStamp(anchor *models.BalanceAnchor, key []byte) bool {
	if len(key) == 0 || anchor.Signature == "" {
		return true
	}
	return utils.ValidateHMAC(anchorPayload(anchor), anchor.Signature, key)
}
