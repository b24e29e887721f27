// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Messages are in Indonesian, like the import summary and export names.
// Operators can quote the code when reporting a failed import or export.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: Ukuran file melebihi batas maksimum
//	          Action: Pecah data jemaat menjadi beberapa file yang lebih kecil
//	          Patterns: "file too large"
//
//	FILE002 - Empty file: Tidak ada baris data di bawah header
//	          Action: Pastikan sheet memiliki kolom Nomor KK dan minimal satu baris data
//	          Patterns: "empty or malformed file"
//
//	FILE003 - Unreadable file: File bukan XLSX atau CSV yang valid
//	          Action: Simpan file sebagai .xlsx atau .csv UTF-8 lalu coba lagi
//	          Patterns: "unreadable file"
//
//	FILE004 - No file: Belum ada file yang dipilih
//	          Action: Pilih file data jemaat yang akan diimpor
//	          Patterns: "no file provided"
//
// # Directory Errors (DIR001-DIR099)
//
//	DIR001 - Already registered: Nomor KK sudah terdaftar
//	         Action: Hapus keluarga ini dari sheet atau ubah datanya di direktori
//	         Patterns: "already registered", "duplicate key", "violates unique"
//
//	DIR002 - Not found: Keluarga atau anggota tidak ditemukan
//	         Action: Muat ulang daftar lalu coba lagi
//	         Patterns: "not found"
//
//	DIR003 - Head member: Kepala keluarga tidak dapat dihapus
//	         Action: Hapus seluruh data keluarga sebagai gantinya
//	         Patterns: "head of household"
//
//	DIR004 - Connection refused: Tidak dapat terhubung ke database direktori
//	         Action: Coba lagi dalam beberapa saat
//	         Patterns: "connection refused"
//
//	DIR005 - Timeout: Waktu operasi habis
//	         Action: Coba lagi
//	         Patterns: "context deadline exceeded", "timeout"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - No members: Keluarga tidak memiliki anggota
//	         Action: Tambahkan minimal kepala keluarga
//	         Patterns: "has no members"
//
//	VAL002 - Multiple heads: Keluarga memiliki lebih dari satu kepala keluarga
//	         Action: Tandai hanya satu anggota sebagai Kepala Keluarga
//	         Patterns: "more than one head"
//
//	VAL003 - Invalid status: Status verifikasi tidak dikenali
//	         Action: Gunakan Pending, Verified atau Rejected
//	         Patterns: "invalid verification status"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - System busy: Too many imports in progress
//	         Action: Tunggu sebentar lalu coba lagi
//	         Patterns: "too many imports"
//
//	IMP002 - Request cancelled: Permintaan dibatalkan
//	         Action: Coba lagi
//	         Patterns: "context canceled"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Terlalu banyak permintaan
//	          Action: Tunggu sebentar sebelum mencoba lagi
//	          Patterns: "rate limit"
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: Terjadi kesalahan yang tidak terduga
//	         Action: Coba lagi atau hubungi admin
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Ukuran file melebihi batas maksimum",
			Action:  "Pecah data jemaat menjadi beberapa file yang lebih kecil",
			Code:    "FILE001",
		},
	},
	{
		pattern: "empty or malformed file",
		msg: UserMessage{
			Message: "Tidak ada baris data di bawah header",
			Action:  "Pastikan sheet memiliki kolom Nomor KK dan minimal satu baris data",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unreadable file",
		msg: UserMessage{
			Message: "File bukan XLSX atau CSV yang valid",
			Action:  "Simpan file sebagai .xlsx atau .csv UTF-8 lalu coba lagi",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "Belum ada file yang dipilih",
			Action:  "Pilih file data jemaat yang akan diimpor",
			Code:    "FILE004",
		},
	},

	// Directory errors
	{
		pattern: "already registered",
		msg:     alreadyRegistered,
	},
	{
		pattern: "duplicate key",
		msg:     alreadyRegistered,
	},
	{
		pattern: "violates unique",
		msg:     alreadyRegistered,
	},
	{
		pattern: "head of household",
		msg: UserMessage{
			Message: "Kepala keluarga tidak dapat dihapus",
			Action:  "Hapus seluruh data keluarga sebagai gantinya",
			Code:    "DIR003",
		},
	},
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "Keluarga atau anggota tidak ditemukan",
			Action:  "Muat ulang daftar lalu coba lagi",
			Code:    "DIR002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Tidak dapat terhubung ke database direktori",
			Action:  "Coba lagi dalam beberapa saat",
			Code:    "DIR004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg:     timedOut,
	},
	{
		pattern: "timeout",
		msg:     timedOut,
	},

	// Validation errors
	{
		pattern: "has no members",
		msg: UserMessage{
			Message: "Keluarga tidak memiliki anggota",
			Action:  "Tambahkan minimal kepala keluarga",
			Code:    "VAL001",
		},
	},
	{
		pattern: "more than one head",
		msg: UserMessage{
			Message: "Keluarga memiliki lebih dari satu kepala keluarga",
			Action:  "Tandai hanya satu anggota sebagai Kepala Keluarga",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid verification status",
		msg: UserMessage{
			Message: "Status verifikasi tidak dikenali",
			Action:  "Gunakan Pending, Verified atau Rejected",
			Code:    "VAL003",
		},
	},

	// Import errors
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "Sistem sedang memproses impor lain",
			Action:  "Tunggu sebentar lalu coba lagi",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Permintaan dibatalkan",
			Action:  "Coba lagi",
			Code:    "IMP002",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Terlalu banyak permintaan",
			Action:  "Tunggu sebentar sebelum mencoba lagi",
			Code:    "RATE001",
		},
	},
}

var alreadyRegistered = UserMessage{
	Message: "Nomor KK sudah terdaftar",
	Action:  "Hapus keluarga ini dari sheet atau ubah datanya di direktori",
	Code:    "DIR001",
}

var timedOut = UserMessage{
	Message: "Waktu operasi habis",
	Action:  "Coba lagi",
	Code:    "DIR005",
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Terjadi kesalahan yang tidak terduga",
	Action:  "Coba lagi atau hubungi admin",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns the zero UserMessage for a nil error.
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

// FormatUserError renders "Message (Kode: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Kode: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
