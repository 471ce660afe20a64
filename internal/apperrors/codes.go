package apperrors

const (
	CodeInternal = "INTERNAL_ERROR"

	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInvalidTime     = "INVALID_TIME"
	CodeInvalidDate     = "INVALID_DATE"

	CodeAlreadyOrganizedToday = "ALREADY_ORGANIZED_TODAY"
	CodeNoRelevantPoll        = "NO_RELEVANT_POLL"
	CodeNoOpenPoll            = "NO_OPEN_POLL"
	CodeNotAParticipant       = "NOT_A_PARTICIPANT"
	CodeMemberAlreadyExists   = "MEMBER_ALREADY_EXISTS"

	CodeMemberNotFound      = "MEMBER_NOT_FOUND"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeConfigNotFound      = "CONFIG_NOT_FOUND"

	CodeNoEligibleMembers     = "NO_ELIGIBLE_MEMBERS"
	CodeNoCandidatesAvailable = "NO_CANDIDATES_AVAILABLE"
	CodeNoParticipants        = "NO_PARTICIPANTS"
)

// --- Ввод пользователя ---

var ErrInvalidArgument = New(KindValidation, CodeInvalidArgument, "Некорректные аргументы команды")

var ErrInvalidTime = New(KindValidation, CodeInvalidTime, "Некорректное время дейли")

var ErrInvalidDate = New(KindValidation, CodeInvalidDate, "Некорректная дата")

// --- Состояние тендера ---

var ErrAlreadyOrganizedToday = New(KindConflict, CodeAlreadyOrganizedToday, "Тендер на проведение дейли сегодня уже проводился")

var ErrNoRelevantPoll = New(KindConflict, CodeNoRelevantPoll, "Нет актуального голосования")

var ErrNoOpenPoll = New(KindConflict, CodeNoOpenPoll, "Нет открытого голосования для подведения итогов")

var ErrNotAParticipant = New(KindConflict, CodeNotAParticipant, "Пользователь не участвует в текущем голосовании")

var ErrMemberAlreadyExists = New(KindConflict, CodeMemberAlreadyExists, "Пользователь уже есть в базе данных")

// --- Поиск ---

var ErrMemberNotFound = New(KindNotFound, CodeMemberNotFound, "Пользователь не найден")

var ErrParticipantNotFound = New(KindNotFound, CodeParticipantNotFound, "Участник голосования не найден")

var ErrConfigNotFound = New(KindNotFound, CodeConfigNotFound, "Чат не инициализирован, выполните /start")

// --- Отбор кандидатов ---

// ErrNoEligibleMembers — сигнал отбора, обрабатывается движком (сброс и повтор).
var ErrNoEligibleMembers = New(KindInternal, CodeNoEligibleMembers, "Нет доступных участников")

var ErrNoCandidatesAvailable = New(KindExhausted, CodeNoCandidatesAvailable, "Не удалось получить пользователей для создания опроса")

var ErrNoParticipants = New(KindInternal, CodeNoParticipants, "Не найдено участников тендера в базе данных")
