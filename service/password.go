package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// 密码哈希采用 PBKDF2-HMAC-SHA256，存储为自描述格式：
//
//	PBKDF2$<迭代次数>$<base64盐>$<base64密钥>
//
// 迭代次数写进哈希串本身，后续提高迭代次数不会让已有哈希失效，
// 校验时总是按存储的参数重算
const (
	passwordScheme    = "PBKDF2"
	passwordSaltSize  = 16
	passwordKeySize   = 32
	passwordIterCount = 100000
)

// ErrEmptyPassword 密码为空或全空白
var ErrEmptyPassword = errors.New("密码不能为空")

// HashPassword 生成密码哈希
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, passwordSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, passwordIterCount, passwordKeySize, sha256.New)

	return strings.Join([]string{
		passwordScheme,
		strconv.Itoa(passwordIterCount),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	}, "$"), nil
}

// VerifyPassword 校验密码
// 任何格式非法的存储哈希都返回 false，不会 panic；
// 对比使用常数时间比较，避免时序侧信道
func VerifyPassword(password, storedHash string) bool {
	if strings.TrimSpace(password) == "" || strings.TrimSpace(storedHash) == "" {
		return false
	}

	parts := strings.Split(storedHash, "$")
	if len(parts) != 4 {
		return false
	}
	if parts[0] != passwordScheme {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}

	actual := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(actual, expected) == 1
}
