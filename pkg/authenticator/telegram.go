package authenticator

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// TelegramInitDataExpiration bounds how old a signed init-data payload may be
// before it is rejected.
const TelegramInitDataExpiration = 24 * time.Hour

// VerifyTelegramInitData validates the signature and freshness of a telegram
// mini-app init-data payload and returns the telegram user id it carries.
func VerifyTelegramInitData(raw, botToken string) (string, error) {
	if err := initdata.Validate(raw, botToken, TelegramInitDataExpiration); err != nil {
		return "", err
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return "", err
	}

	var user struct {
		ID int64 `json:"id"`
	}

	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return "", err
	}

	if user.ID == 0 {
		return "", fmt.Errorf("init data carries no user")
	}

	return strconv.FormatInt(user.ID, 10), nil
}
