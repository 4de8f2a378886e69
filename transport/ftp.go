package transport

import (
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"

	submit "github.com/scott717/submit-service"
)

// DefaultFTPTimeout bounds the control-connection dial only; there is no
// deadline on the transfer itself.
const DefaultFTPTimeout = 30 * time.Second

// FTP fetches sources from FTP servers. Credentials come from the URL's
// userinfo; without them the login is anonymous.
type FTP struct {
	Timeout time.Duration
}

// NewFTP returns an FTP opener with the default dial timeout.
func NewFTP() *FTP {
	return &FTP{Timeout: DefaultFTPTimeout}
}

// Open connects, logs in, and starts retrieving the URL path. The returned
// stream's Close shuts down the data connection and then QUITs the control
// connection, on both normal exhaustion and early abort; an FTP session is
// never left idling.
func (f *FTP) Open(rawurl string) (io.ReadCloser, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return nil, submit.Connectionf(submit.CodeConnectionFailed, "parsing FTP URL: %v", err)
	}
	conn, err := ftp.Dial(hostport(u), ftp.DialWithTimeout(f.Timeout))
	if err != nil {
		return nil, submit.Connectionf(submit.CodeConnectionFailed, "connecting to %s: %v", u.Host, err)
	}
	user, pass := credentials(u)
	if err := conn.Login(user, pass); err != nil {
		conn.Quit()
		return nil, submit.Connectionf(submit.CodeAuthFailed, "FTP login as %q failed: %v", user, err)
	}
	resp, err := conn.Retr(u.Path)
	if err != nil {
		conn.Quit()
		return nil, submit.Connectionf(submit.CodeConnectionFailed, "retrieving %s: %v", u.Path, err)
	}
	return &ftpStream{resp: resp, conn: conn}, nil
}

func hostport(u *url.URL) string {
	if u.Port() == "" {
		return net.JoinHostPort(u.Hostname(), "21")
	}
	return u.Host
}

func credentials(u *url.URL) (user, pass string) {
	user, pass = "anonymous", "anonymous"
	if u.User == nil {
		return user, pass
	}
	if name := u.User.Username(); name != "" {
		user = name
	}
	if p, ok := u.User.Password(); ok {
		pass = p
	}
	return user, pass
}

type ftpStream struct {
	resp *ftp.Response
	conn *ftp.ServerConn
	once sync.Once
	err  error
}

func (s *ftpStream) Read(p []byte) (int, error) {
	return s.resp.Read(p)
}

func (s *ftpStream) Close() error {
	s.once.Do(func() {
		s.err = s.resp.Close()
		if qerr := s.conn.Quit(); s.err == nil {
			s.err = qerr
		}
	})
	return s.err
}
