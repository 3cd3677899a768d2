package middlewares

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	helper "dormitory_backend/internals/helpers"
)

// IPAllowList menjaga route staff. Entri boleh berupa IP tunggal atau CIDR.
// List kosong = semua client diizinkan.
func IPAllowList(entries []string) fiber.Handler {
	var (
		ips     = map[string]struct{}{}
		nets    []*net.IPNet
		invalid bool
	)
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			if _, n, err := net.ParseCIDR(e); err == nil {
				nets = append(nets, n)
				continue
			}
			logrus.WithField("entry", e).Warn("allow-list: CIDR tidak valid, diabaikan")
			invalid = true
			continue
		}
		if ip := net.ParseIP(e); ip != nil {
			ips[ip.String()] = struct{}{}
			continue
		}
		logrus.WithField("entry", e).Warn("allow-list: IP tidak valid, diabaikan")
		invalid = true
	}
	// entri kosong/spasi tidak dihitung; entri rusak tetap menutup akses
	open := len(ips) == 0 && len(nets) == 0 && !invalid

	return func(c *fiber.Ctx) error {
		if open {
			return c.Next()
		}
		ip := net.ParseIP(c.IP())
		if ip != nil {
			if _, ok := ips[ip.String()]; ok {
				return c.Next()
			}
			for _, n := range nets {
				if n.Contains(ip) {
					return c.Next()
				}
			}
		}
		logrus.WithFields(logrus.Fields{"ip": c.IP(), "path": c.Path()}).Warn("staff access denied")
		return helper.JsonErrorCode(c, fiber.StatusForbidden, "FORBIDDEN", "Access denied")
	}
}
