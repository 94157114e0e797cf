package telegram

import (
	"fmt"
	"strings"

	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

// Lang selects a message catalog.
type Lang string

const (
	LangRU Lang = "ru"
	LangEN Lang = "en"
)

// LangFromCode maps a Telegram language_code. Russian is the default.
func LangFromCode(code string) Lang {
	if strings.HasPrefix(strings.ToLower(code), "en") {
		return LangEN
	}
	return LangRU
}

type catalog struct {
	payLink         string
	credentials     string
	paymentReceived string
	confirmDone     string
	confirmFailed   string
}

var catalogs = map[Lang]catalog{
	LangRU: {
		payLink:         "Счёт на тариф <b>%s</b> (%s) создан.\n<a href=\"%s\">Оплатить</a>",
		credentials:     "Оплата получена! Тариф: <b>%s</b>\nЛогин: <code>%s</code>\nПароль: <code>%s</code>\nКлюч: <code>%s</code>\nДействует до: %s",
		paymentReceived: "Платёж получен, активируем подписку...",
		confirmDone:     "Готово! Ключ отправлен в личные сообщения.",
		confirmFailed:   "Не удалось активировать подписку. Напишите в поддержку, платёж сохранён.",
	},
	LangEN: {
		payLink:         "Invoice for plan <b>%s</b> (%s) is ready.\n<a href=\"%s\">Pay</a>",
		credentials:     "Payment received! Plan: <b>%s</b>\nLogin: <code>%s</code>\nPassword: <code>%s</code>\nKey: <code>%s</code>\nValid until: %s",
		paymentReceived: "Payment received, activating your subscription...",
		confirmDone:     "Done! Your key has been sent in a private message.",
		confirmFailed:   "Could not activate the subscription. Please contact support, your payment is safe.",
	},
}

// Interpolated values come from clients and the gateway, so they are reduced
// to escaped text before going into an HTML message.
var strict = bluemonday.StrictPolicy()

func lookup(lang Lang) catalog {
	if c, ok := catalogs[lang]; ok {
		return c
	}
	return catalogs[LangRU]
}

func PayLinkMessage(lang Lang, plan string, price decimal.Decimal, payURL string) string {
	return fmt.Sprintf(lookup(lang).payLink, strict.Sanitize(plan), price.String(), strict.Sanitize(payURL))
}

func CredentialsMessage(lang Lang, cred domain.Credential) string {
	return fmt.Sprintf(lookup(lang).credentials,
		strict.Sanitize(cred.Plan),
		strict.Sanitize(cred.Username),
		cred.Password,
		cred.Secret,
		cred.ExpiresAt.UTC().Format("2006-01-02 15:04 UTC"),
	)
}

func PaymentReceivedMessage(lang Lang) string {
	return lookup(lang).paymentReceived
}

func ConfirmDoneMessage(lang Lang) string {
	return lookup(lang).confirmDone
}

func ConfirmFailedMessage(lang Lang) string {
	return lookup(lang).confirmFailed
}
