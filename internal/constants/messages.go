package constants

const (
	MsgStart = "Привет! Я разыгрываю проведение дейли между участниками чата.\n" +
		"Добавьте участников командой /add, затем запустите тендер командой /poll."

	MsgHelp = `Команды:
/start — инициализация бота для чата
/add <имя> — добавить участника
/delete <имя или id> — удалить участника
/info — список участников тендера
/skip <имя> <дата> — освободить участника до даты (ДД.ММ.ГГГГ)
/poll [ЧЧ:ММ] — тендер на проведение дейли, итоги во время по UTC
/repoll [имя] — заменить участника текущего опроса
/endpoll — завершить опрос досрочно`

	MsgUnknownCommand = "Неизвестная команда. /help — список команд"

	MsgChatInitialized = "✅ Чат готов к тендерам на проведение дейли"

	MsgPollQuestion = "Кто проведёт дейли?"

	MsgPollStarted = "🗳 Тендер запущен, итоги будут подведены в %s UTC"

	MsgWinner = "🏆 Дейли проводит %s!"

	MsgSoleWinner = "🏆 Других кандидатов нет — дейли проводит %s!"

	MsgRepolled = "🔁 %s освобождён до завтра, опрос обновлён"

	MsgMemberAdded = "Пользователь \"%s\" успешно добавлен"

	MsgMemberDeleted = "Пользователь \"%s\" успешно удалён"

	MsgMemberExempted = "Пользователь \"%s\" не участвует в тендерах до %s включительно"

	MsgMembersHeader = "Встречайте участников тендера:\n"

	MsgNoMembers = "В чате нет участников тендера. Добавьте их командой /add"

	MsgChooseRepoll = "Кого заменить в текущем опросе?"

	MsgDefaultTimeUsed = "Время не указано, итоги будут подведены в %02d:%02d UTC"

	MsgErrorPrefix = "Произошла ошибка: %s"

	MsgResolveFailed = "Произошла ошибка при получении результатов голосования: %s"

	MsgAlreadyResolved = ", уже провёл дейли"

	MsgAvailableFrom = ", доступен с %s"

	BtnEndPoll = "Завершить опрос"
)

// Команды для меню бота
var Commands = [][2]string{
	{"start", "Запуск и инициализация бота для текущего чата"},
	{"add", "Добавление пользователей"},
	{"delete", "Удаление пользователей"},
	{"info", "Список участников тендера"},
	{"skip", "Освободить участника до даты"},
	{"poll", "Создание тендера на проведение дейли"},
	{"repoll", "Замена одного участника текущего опроса"},
	{"endpoll", "Завершение опроса"},
	{"help", "Список команд"},
}
