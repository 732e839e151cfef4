package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// 房间码字符集，去掉了易混淆的 0/O/1/I/L
const roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateRoomCode 生成指定长度的房间码
// 房间码要靠人念出来或抄下来，用加密随机避免可猜测的序列
func GenerateRoomCode(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	max := big.NewInt(int64(len(roomCodeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// NormalizeRoomCode 规范化用户输入的房间码（去空白、转大写）
func NormalizeRoomCode(input string) string {
	return strings.ToUpper(strings.TrimSpace(input))
}
