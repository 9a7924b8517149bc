package domain

import "fmt"

// Platform identifica uma plataforma de anúncios suportada
type Platform string

const (
	PlatformGoogle   Platform = "google"
	PlatformFacebook Platform = "facebook"
	PlatformTikTok   Platform = "tiktok"
	PlatformAmazon   Platform = "amazon"
	PlatformKakao    Platform = "kakao"
	PlatformNaver    Platform = "naver"
	PlatformCoupang  Platform = "coupang"
)

// AllPlatforms lista todas as plataformas suportadas
var AllPlatforms = []Platform{
	PlatformGoogle,
	PlatformFacebook,
	PlatformTikTok,
	PlatformAmazon,
	PlatformKakao,
	PlatformNaver,
	PlatformCoupang,
}

// ParsePlatform converte uma string em Platform, validando o valor
func ParsePlatform(s string) (Platform, error) {
	for _, p := range AllPlatforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("plataforma desconhecida: %q", s)
}

func (p Platform) String() string {
	return string(p)
}
