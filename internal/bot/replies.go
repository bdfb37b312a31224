package bot

// User-facing reply texts, kept verbatim from the production bot.
const (
	greetingText = "Grind-Games ist die führende deutsche Seite für den An- und Verkauf von Fortnite Accounts. " +
		"Unser Ziel ist es, jedem User ein faires Angebot für seinen Fortnite Account zukommen zu lassen " +
		"und damit die Möglichkeit zu geben, aus einem alten Fortnite Account noch Geld machen zu können - " +
		"während man gleichzeitig einem künftigen Käufer eine Freude bereiten kann!\n\n" +
		"Wir antworten auf alle Account Anfragen in der Regel innerhalb von wenigen Stunden.\n\n" +
		"Sobald wir uns auf einen Preis geeinigt haben, bereiten wir die Überweisung auf dein Bankkonto direkt vor. " +
		"Es ist durchaus möglich, dass das Geld bereits nach wenigen Stunden bei dir ist und wir geben unser Bestes, " +
		"um dafür zu sorgen, dass alle Auszahlungen an unsere Verkäufer schnellstmöglich ausgeführt werden."

	intakePromptText = "👋 Hallo. Schick uns bitte Deine Angaben in diesem Format:\n" +
		"📜 Anzahl der Skins:\n" +
		"💎 OG oder seltene Skins:\n" +
		"📸 Fotos von Deinem Konto\n\n" +
		"Du kannst auch die automatische Verifizierungsmethode verwenden und dein Konto " +
		"durch den Skin Checker überprüfen lassen und uns die Fotos zukommen lassen, " +
		"die du vom Bot in Telegram in nur wenigen Sekunden erhältst.\n@BombSkinCheckerBot"

	intakeRepeatText = "👋 Hallo. Schicken Sie uns Ihre Angaben in diesem Format:\n" +
		"📝 Anzahl der Skins:\n" +
		"📝 Og oder seltene Skins:\n" +
		"🖼️ Fotos von Ihrem Konto\n\n" +
		"Oder Sie können die automatische Verifizierungsmethode verwenden, " +
		"das Konto durch den Checker überprüfen und uns die Fotos schicken, " +
		"die Sie vom Bot in Telegramm erhalten.\n@BombSkinCheckerBot"

	intakeAckText = "✅ Ich danke Ihnen! Bitte warten Sie auf die Antwort des Administrators."

	reviewsButtonText    = "📊 Bewertungen"
	reviewsCaptionText   = "📊 Bewertungen unserer Kunden:"
	reviewsEmptyText     = "⚠️ Keine Bewertungen verfügbar"
	accessDeniedText     = "❌ Kein Zugang"
	addAdminUsageText    = "Verwendung: /addadmin <user_id>"
	addAdminInvalidText  = "❌ Ungültige ID"
	addAdminSuccessText  = "✅ %d wurde als Admin hinzugefügt"
	addAdminWelcomeText  = "🎉 Du bist jetzt Admin dieses Bots."
)
