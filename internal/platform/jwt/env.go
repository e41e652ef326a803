// Package jwtmw はベアラートークンの発行と検証（ginミドルウェア）を提供します。
package jwtmw

// EnvKeyJWTSecret はトークン署名用シークレットを保持する環境変数名です。
const EnvKeyJWTSecret = "JWT_SECRET"
