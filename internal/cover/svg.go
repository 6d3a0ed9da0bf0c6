package cover

import (
	"crypto/md5"
	"encoding/base64"
	"fmt"

	"DailyBrief/internal/domain"
)

const svgTemplate = `<svg xmlns='http://www.w3.org/2000/svg' width='1600' height='900' viewBox='0 0 1600 900'>
  <defs>
    <linearGradient id='g' x1='0' y1='0' x2='1' y2='1'>
      <stop offset='0%%' stop-color='hsl(%d 72%% 52%%)'/>
      <stop offset='100%%' stop-color='hsl(%d 82%% 22%%)'/>
    </linearGradient>
    <filter id='blur'><feGaussianBlur stdDeviation='75'/></filter>
  </defs>
  <rect width='1600' height='900' fill='url(#g)'/>
  <circle cx='380' cy='250' r='200' fill='white' opacity='0.12' filter='url(#blur)'/>
  <circle cx='1180' cy='610' r='250' fill='white' opacity='0.1' filter='url(#blur)'/>
  <rect x='180' y='190' width='1240' height='520' rx='38' fill='black' opacity='0.16'/>
</svg>`

// Hue derives a stable hue from the section and prompt.
func Hue(section domain.SectionKey, prompt string) int {
	sum := md5.Sum([]byte(string(section) + ":" + prompt))
	return int(sum[0]) % 360
}

// GradientSVG renders the offline cover as a base64 data URI.
func GradientSVG(section domain.SectionKey, prompt string) string {
	hue := Hue(section, prompt)
	svg := fmt.Sprintf(svgTemplate, hue, (hue+70)%360)
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}
