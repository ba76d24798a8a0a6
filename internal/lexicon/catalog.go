package lexicon

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Catalog keys. The English text doubles as the key, the x/text convention.
const (
	MsgProcessing         = "Reading your receipt, this can take a moment…"
	MsgNoDocument         = "Please send a photo or a PDF of the receipt."
	MsgDownloadFailed     = "I couldn't download that file. Please send it again."
	MsgUnsupportedFile    = "I can only read photos (JPEG, PNG) and PDF files."
	MsgFileTooLarge       = "That file is too large. Please send a smaller photo or PDF."
	MsgExtractionFailed   = "I couldn't read this receipt: %s\nDo you want to enter the expense manually?"
	MsgExtractionGeneric  = "the recognition service is unavailable"
	MsgReviewIntro        = "Please check the recognized receipt:\n\n%s"
	MsgReviewHint         = "⚠️ %s"
	MsgReviewQuestion     = "Is everything correct?"
	MsgChooseOption       = "Please answer with one of the buttons."
	MsgChooseField        = "Which field do you want to correct?"
	MsgEnterTotal         = "Enter the new total amount, for example 12.50:"
	MsgEnterDate          = "Enter the date as YYYY-MM-DD, for example 2024-03-15:"
	MsgEnterMerchant      = "Enter the merchant name:"
	MsgChooseCategory     = "Choose a category:"
	MsgNoCategories       = "You have no categories yet, so the category can't be changed here."
	MsgFieldSaved         = "%s → %s"
	MsgInvalidAmount      = "That doesn't look like a positive amount. Try again, for example 12.50."
	MsgMalformedDate      = "Please use the YYYY-MM-DD format, for example 2024-03-15."
	MsgInvalidDate        = "That date doesn't exist. Please check the month and the day."
	MsgEmptyMerchant      = "The merchant name can't be empty."
	MsgUnknownCategory    = "Please pick one of the listed categories."
	MsgCancelled          = "Cancelled. No expense was created."
	MsgManualEntry        = "Okay, let's enter the expense manually."
	MsgSaved              = "Expense saved ✅\n\n%s"
	MsgSavedFallback      = "Expense saved ✅"
	MsgCommitFailed       = "I couldn't save your corrections: %s\nThe receipt was recognized as:\n\n%s"
	MsgInternalError      = "Sorry, something went wrong. Please try again later."
	MsgSessionExpired     = "Your receipt session expired after a period of inactivity."
	MsgSessionSuperseded  = "A new receipt arrived, so the previous one was discarded."
	MsgManualEntryPrompt  = "Send the expense as \"amount description\", for example: 12.50 lunch"
	MsgSummaryAmount      = "Amount: %s"
	MsgSummaryDate        = "Date: %s"
	MsgSummaryCategory    = "Category: %s"
	MsgSummaryMerchant    = "Merchant: %s"
	MsgSummaryDescription = "Note: %s"
	MsgSummaryItems       = "Items:"
	MsgUncategorized      = "Uncategorized"
	MsgNotRecognized      = "not recognized"
	MsgHintUncertain      = "Some fields may be wrong: %s"
)

var russian = map[string]string{
	MsgProcessing:         "Распознаю чек, это может занять немного времени…",
	MsgNoDocument:         "Пришлите фото или PDF чека.",
	MsgDownloadFailed:     "Не удалось скачать файл. Пришлите его ещё раз.",
	MsgUnsupportedFile:    "Я умею читать только фото (JPEG, PNG) и PDF.",
	MsgFileTooLarge:       "Файл слишком большой. Пришлите фото или PDF поменьше.",
	MsgExtractionFailed:   "Не удалось распознать чек: %s\nХотите ввести расход вручную?",
	MsgExtractionGeneric:  "сервис распознавания недоступен",
	MsgReviewIntro:        "Проверьте распознанный чек:\n\n%s",
	MsgReviewQuestion:     "Всё верно?",
	MsgChooseOption:       "Пожалуйста, выберите один из вариантов.",
	MsgChooseField:        "Какое поле исправить?",
	MsgEnterTotal:         "Введите новую сумму, например 12.50:",
	MsgEnterDate:          "Введите дату в формате ГГГГ-ММ-ДД, например 2024-03-15:",
	MsgEnterMerchant:      "Введите название магазина:",
	MsgChooseCategory:     "Выберите категорию:",
	MsgNoCategories:       "У вас пока нет категорий, поэтому категорию здесь изменить нельзя.",
	MsgInvalidAmount:      "Это не похоже на положительную сумму. Попробуйте ещё раз, например 12.50.",
	MsgMalformedDate:      "Используйте формат ГГГГ-ММ-ДД, например 2024-03-15.",
	MsgInvalidDate:        "Такой даты не существует. Проверьте месяц и день.",
	MsgEmptyMerchant:      "Название магазина не может быть пустым.",
	MsgUnknownCategory:    "Выберите одну из предложенных категорий.",
	MsgCancelled:          "Отменено. Расход не создан.",
	MsgManualEntry:        "Хорошо, введём расход вручную.",
	MsgSaved:              "Расход сохранён ✅\n\n%s",
	MsgSavedFallback:      "Расход сохранён ✅",
	MsgCommitFailed:       "Не удалось сохранить исправления: %s\nЧек был распознан так:\n\n%s",
	MsgInternalError:      "Извините, что-то пошло не так. Попробуйте позже.",
	MsgSessionExpired:     "Сессия распознавания чека завершена из-за неактивности.",
	MsgSessionSuperseded:  "Пришёл новый чек, поэтому предыдущий отменён.",
	MsgManualEntryPrompt:  "Отправьте расход в виде «сумма описание», например: 12.50 обед",
	MsgSummaryAmount:      "Сумма: %s",
	MsgSummaryDate:        "Дата: %s",
	MsgSummaryCategory:    "Категория: %s",
	MsgSummaryMerchant:    "Магазин: %s",
	MsgSummaryDescription: "Заметка: %s",
	MsgSummaryItems:       "Позиции:",
	MsgUncategorized:      "Без категории",
	MsgNotRecognized:      "не распознано",
	MsgHintUncertain:      "Возможно, неверно распознаны поля: %s",
}

func init() {
	for key, msg := range russian {
		_ = message.SetString(language.Russian, key, msg)
	}
}
