package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrNotEnrolled      ErrCode = "NOT_ENROLLED"
	ErrNotCohortTeacher ErrCode = "NOT_COHORT_TEACHER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Admission & scheduling ────────────────────────────────────────
	ErrWrongMode         ErrCode = "EXAM_MODE_MISMATCH"
	ErrOutsideWindow     ErrCode = "OUTSIDE_WINDOW"
	ErrAlreadyAttempted  ErrCode = "ALREADY_ATTEMPTED"
	ErrQuotaExceeded     ErrCode = "ATTEMPT_QUOTA_EXCEEDED"
	ErrOverlappingWindow ErrCode = "OVERLAPPING_WINDOW"
	ErrWindowInUse       ErrCode = "WINDOW_IN_USE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."
	case ErrTokenInvalid:
		return "El token de autenticación no es válido."
	case ErrTokenExpired:
		return "El token de autenticación ha expirado."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "No tienes permiso para acceder a este recurso."
	case ErrNotEnrolled:
		return "No perteneces al curso asignado a esta ventana."
	case ErrNotCohortTeacher:
		return "Solo los profesores del curso pueden programar sus ventanas."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validación falló. Revisa los datos enviados."
	case ErrInvalidID:
		return "El formato del ID no es válido."
	case ErrInvalidPayload:
		return "El cuerpo de la solicitud no es válido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso no encontrado."

	// ─── Admission & scheduling ────────────────────────────────────────
	case ErrWrongMode:
		return "La modalidad del ensayo no corresponde a esta operación."
	case ErrOutsideWindow:
		return "La ventana de rendición no está activa en este momento."
	case ErrAlreadyAttempted:
		return "Ya rendiste este ensayo en esta ventana."
	case ErrQuotaExceeded:
		return "Alcanzaste el número máximo de intentos para este ensayo."
	case ErrOverlappingWindow:
		return "La ventana se superpone con otra ya programada para el mismo curso."
	case ErrWindowInUse:
		return "La ventana ya registra intentos y no puede eliminarse."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas solicitudes. Inténtalo de nuevo más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
