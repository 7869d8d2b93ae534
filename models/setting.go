package models

import "gorm.io/gorm"

// Setting is a key/value row used for instance-level state such as the admin
// password hash.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"size:1024;not null" json:"value"`
}

const AdminPasswordKey = "admin_password"

// GetSetting returns the value stored under key, or gorm.ErrRecordNotFound.
func GetSetting(db *gorm.DB, key string) (string, error) {
	var s Setting
	if err := db.First(&s, "key = ?", key).Error; err != nil {
		return "", err
	}
	return s.Value, nil
}

// SetSetting creates or updates the value stored under key.
func SetSetting(db *gorm.DB, key, value string) error {
	res := db.Model(&Setting{}).Where("key = ?", key).Update("value", value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return db.Create(&Setting{Key: key, Value: value}).Error
	}
	return nil
}
