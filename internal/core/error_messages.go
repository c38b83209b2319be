package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference. Users quote the code; support staff look it up here.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: input exceeds the configured size limit
//	          Patterns: "file too large", "input too large"
//
//	FILE002 - Invalid CSV: file could not be read as delimited text
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: file is not in a supported text encoding
//	          Patterns: "encoding error"
//
//	FILE004 - No file: a required upload field was empty
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: file has no data rows
//	          Patterns: "empty file"
//
//	FILE006 - Unsupported format: not CSV, TXT or XLSX
//	          Patterns: "unsupported file format", "invalid xlsx"
//
// # Parse Errors (PARSE001-PARSE099)
//
//	PARSE001 - Malformed quoting: unbalanced or stray quote characters
//	           Patterns: "quoted-field"
//
//	PARSE002 - Delimiter: no consistent field separator found
//	           Patterns: "consistent delimiter"
//
//	PARSE003 - Ragged row: a row has more or fewer fields than the header
//	           Patterns: "too many fields", "too few fields"
//
// # Input Errors (INPUT001-INPUT099)
//
//	INPUT001 - Missing input: master file or CPF list absent
//	           Patterns: "missing input"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - System busy: all run slots are taken
//	         Patterns: "too many concurrent runs"
//
//	RUN002 - Cancelled: the request was cancelled
//	         Patterns: "context canceled"
//
//	RUN003 - Expired: the result is no longer available
//	         Patterns: "run not found"
//
//	RUN004 - Timeout: reading the inputs took too long
//	         Patterns: "context deadline exceeded", "timeout"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error. Check application logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Input
	{
		pattern: "missing input",
		msg: UserMessage{
			Message: "Selecione o arquivo mestre e insira a lista de CPFs antes de processar.",
			Action:  "Envie o arquivo mestre e um arquivo ou lista de CPFs",
			Code:    "INPUT001",
		},
	},

	// Parse (specific before the generic "invalid csv")
	{
		pattern: "quoted-field",
		msg: UserMessage{
			Message: "O arquivo contém aspas desbalanceadas",
			Action:  "Verifique se todo campo entre aspas é fechado corretamente",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "consistent delimiter",
		msg: UserMessage{
			Message: "Não foi possível identificar o separador de colunas",
			Action:  "Use vírgula, ponto e vírgula, tabulação ou barra vertical de forma consistente",
			Code:    "PARSE002",
		},
	},
	{
		pattern: "too many fields",
		msg: UserMessage{
			Message: "Uma linha tem mais colunas que o cabeçalho",
			Action:  "Os valores excedentes foram preservados; revise a linha indicada",
			Code:    "PARSE003",
		},
	},
	{
		pattern: "too few fields",
		msg: UserMessage{
			Message: "Uma linha tem menos colunas que o cabeçalho",
			Action:  "Os campos ausentes foram deixados em branco; revise a linha indicada",
			Code:    "PARSE003",
		},
	},

	// File
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "O arquivo excede o tamanho máximo permitido",
			Action:  "Divida o arquivo em partes menores",
			Code:    "FILE001",
		},
	},
	{
		pattern: "input too large",
		msg: UserMessage{
			Message: "O arquivo excede o tamanho máximo permitido",
			Action:  "Divida o arquivo em partes menores",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "O arquivo não é um CSV válido",
			Action:  "Exporte novamente o arquivo como CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "O arquivo contém caracteres inválidos",
			Action:  "Salve o arquivo com codificação UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "Nenhum arquivo foi selecionado",
			Action:  "Selecione um arquivo CSV ou XLSX",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "O arquivo está vazio",
			Action:  "Envie um arquivo com pelo menos uma linha de dados",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "Formato de arquivo não suportado",
			Action:  "Use arquivos .csv, .txt ou .xlsx",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "Formato de arquivo não suportado",
			Action:  "Use arquivos .csv, .txt ou .xlsx",
			Code:    "FILE006",
		},
	},

	// Run
	{
		pattern: "too many concurrent runs",
		msg: UserMessage{
			Message: "O sistema está ocupado",
			Action:  "Aguarde um momento e tente novamente",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "A solicitação foi cancelada",
			Action:  "Tente novamente",
			Code:    "RUN002",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "O resultado não está mais disponível",
			Action:  "Processe os arquivos novamente",
			Code:    "RUN003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "A leitura dos arquivos demorou demais",
			Action:  "Tente um arquivo menor ou verifique sua conexão",
			Code:    "RUN004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "A leitura dos arquivos demorou demais",
			Action:  "Tente um arquivo menor ou verifique sua conexão",
			Code:    "RUN004",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Muitas solicitações",
			Action:  "Aguarde um momento antes de tentar novamente",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "Ocorreu um erro inesperado",
	Action:  "Tente novamente ou contate o suporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when nothing matches.
//
// Example:
//
//	msg := MapError(&MissingInputError{Input: InputMaster})
//	// msg.Code == "INPUT001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
